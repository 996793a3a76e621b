package analysis

// DefaultLanguage is used whenever the requested language has no table or the
// table is missing a key.
const DefaultLanguage = "pt"

// Narrative templates per language. "pt" is complete; "en" covers the simple
// report only, so the full engine falls back to Portuguese for other keys.
var translations = map[string]map[string]string{
	"pt": {
		// simple report
		"simple_exc":       "O dia foi excecionalmente produtivo, com uma geração total de %.2f kWh.",
		"simple_good":      "O dia teve uma boa produção de energia, atingindo %.2f kWh.",
		"simple_modest":    "A produção de energia foi modesta, com um total de %.2f kWh.",
		"simple_low":       "A produção de energia foi baixa, totalizando apenas %.2f kWh.",
		"simple_charge":    "A bateria terminou o dia com mais carga do que começou, indicando um bom excedente energético.",
		"simple_discharge": "Foi necessário utilizar uma parte da energia armazenada na bateria para suprir o consumo.",
		"simple_stable":    "O estado da bateria manteve-se estável ao longo do dia.",

		// trend
		"trend_above":   "A produção ficou %.0f%% acima da média histórica recente.",
		"trend_below":   "A produção ficou %.0f%% abaixo da média histórica recente.",
		"trend_aligned": "A produção está alinhada com a média histórica recente.",

		// efficiency vs expected baseline
		"eff_excellent": "O sistema superou as expectativas, operando a %.0f%% da produção esperada.",
		"eff_good":      "O sistema teve uma boa produção, operando a %.0f%% do esperado.",
		"eff_moderate":  "A produção ficou moderada, em %.0f%% do esperado.",
		"eff_low":       "A produção ficou bem abaixo do esperado, em apenas %.0f%% da referência.",

		// battery
		"batt_charge":    "A bateria acumulou carga ao longo do dia (%d%% → %d%%), sinal de excedente energético.",
		"batt_discharge": "A bateria foi descarregada para suprir o consumo (%d%% → %d%%).",
		"batt_stable":    "O estado de carga da bateria manteve-se estável (%d%% → %d%%).",
		"batt_none":      "Sem dados de bateria para este dia.",

		// peak power
		"peak_high":   "O pico de potência atingiu %.0f W, um valor excelente para o sistema.",
		"peak_medium": "O pico de potência foi de %.0f W, dentro do intervalo habitual.",
		"peak_low":    "O pico de potência ficou baixo, em %.0f W.",

		// grid autonomy
		"auto_low":     "A rede elétrica forneceu %.0f%% da energia consumida, indicando baixa autonomia solar.",
		"auto_high":    "Apenas %.0f%% da energia veio da rede; o sistema operou com alta autonomia.",
		"auto_full":    "O sistema operou de forma totalmente autónoma, sem consumo da rede.",
		"auto_unknown": "Sem dados de rede suficientes para avaliar a autonomia do sistema.",

		// next-day weather
		"pred_rain":   "Para amanhã a previsão é de chuva (%.0f%% de probabilidade); espere uma geração reduzida.",
		"pred_clouds": "Amanhã deve estar nublado; a geração pode ficar abaixo do habitual.",
		"pred_clear":  "Amanhã o céu deve estar limpo, com máxima de %.1f°C; boas condições de geração.",
		"pred_other":  "A previsão para amanhã é incerta; acompanhe a geração ao longo do dia.",

		// closing summary
		"close_exceptional": "No total, um dia excecional com %.2f kWh gerados.",
		"close_good":        "No total, um bom dia de geração com %.2f kWh.",
		"close_moderate":    "No total, um dia moderado com %.2f kWh gerados.",
		"close_low":         "No total, um dia fraco com apenas %.2f kWh gerados.",

		// recommendations
		"rec_night_shift":   "O consumo noturno da rede foi de %.1f kWh; mova cargas pesadas para o meio do dia para aproveitar a geração solar.",
		"rec_night_midday":  "Há geração sobrando ao meio-dia (média de %.0f W) enquanto a rede ainda é usada; concentre o consumo entre 10h e 15h.",
		"rec_night_warning": "O consumo da rede à noite (%.1f kWh) indica dependência no fim do dia; considere deslocar parte do consumo.",
		"rec_cleaning":      "A geração ficou baixa; verifique sombreamento e considere limpar os painéis.",
		"rec_battery":       "A bateria terminou o dia com carga baixa; acompanhe o estado de carga nos próximos dias.",
		"rec_consumption":   "A geração foi alta; considere aumentar o autoconsumo para aproveitar o excedente.",
		"rec_shift":         "O pico de potência ficou baixo; agrupar cargas no período de maior geração pode melhorar o aproveitamento.",
		"rec_schedule":      "Com boa geração diária, vale programar eletrodomésticos pesados para o horário solar.",

		// automation suggestions (time-of-day)
		"autom_heavy": "A bateria está acima de 90%; é um bom momento para ligar eletrodomésticos pesados.",
		"autom_water": "Geração elevada neste horário; aproveite para aquecer água agora.",
		"autom_shed":  "Geração baixa no fim do dia; desligue cargas não essenciais para poupar bateria.",
	},
	"en": {
		"simple_exc":       "The day was exceptionally productive, with a total generation of %.2f kWh.",
		"simple_good":      "The day had good energy production, reaching %.2f kWh.",
		"simple_modest":    "Energy production was modest, with a total of %.2f kWh.",
		"simple_low":       "Energy production was low, totaling only %.2f kWh.",
		"simple_charge":    "The battery ended the day with more charge than it started, indicating a good energy surplus.",
		"simple_discharge": "It was necessary to use a portion of the stored battery energy to meet consumption.",
		"simple_stable":    "The battery's state of charge remained stable throughout the day.",
	},
}

// tr resolves a template, failing soft to the default language when the
// requested language or key has no translation.
func tr(lang, key string) string {
	if table, ok := translations[lang]; ok {
		if s, ok := table[key]; ok {
			return s
		}
	}
	return translations[DefaultLanguage][key]
}
