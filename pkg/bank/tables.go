package bank

// Institution is a row of the static bank catalogue.
type Institution struct {
	Code            string
	Name            string
	InstitutionCode string
}

// primaryInstitutions is keyed by the three-digit bank code that opens a
// CLABE. Rows with an empty InstitutionCode settle through the secondary
// table.
var primaryInstitutions = []Institution{
	{"002", "BANAMEX", "40002"},
	{"006", "BANCOMEXT", "37006"},
	{"009", "BANOBRAS", "37009"},
	{"012", "BBVA MEXICO", "40012"},
	{"014", "SANTANDER", "40014"},
	{"019", "BANJERCITO", "37019"},
	{"021", "HSBC", "40021"},
	{"030", "BAJIO", "40030"},
	{"036", "INBURSA", "40036"},
	{"042", "MIFEL", "40042"},
	{"044", "SCOTIABANK", "40044"},
	{"058", "BANREGIO", "40058"},
	{"059", "INVEX", "40059"},
	{"060", "BANSI", "40060"},
	{"062", "AFIRME", "40062"},
	{"072", "BANORTE", "40072"},
	{"106", "BANK OF AMERICA", "40106"},
	{"112", "BMONEX", "40112"},
	{"113", "VE POR MAS", "40113"},
	{"127", "AZTECA", "40127"},
	{"128", "AUTOFIN", "40128"},
	{"130", "COMPARTAMOS", "40130"},
	{"135", "NAFIN", "37135"},
	{"136", "INTERCAM BANCO", "40136"},
	{"137", "BANCOPPEL", "40137"},
	{"138", "UALA", "40138"},
	{"140", "CONSUBANCO", "40140"},
	{"143", "CIBANCO", "40143"},
	{"145", "BBASE", "40145"},
	{"147", "BANKAOOL", "40147"},
	{"148", "PAGATODO", "40148"},
	{"150", "INMOBILIARIO", "40150"},
	{"152", "BANCREA", "40152"},
	{"155", "ICBC", "40155"},
	{"156", "SABADELL", "40156"},
	{"158", "MIZUHO BANK", "40158"},
	{"159", "BANK OF CHINA", "40159"},
	{"166", "BANCO DEL BIENESTAR", "37166"},
	{"167", "HEY BANCO", "40167"},
	{"168", "HIPOTECARIA FEDERAL", "37168"},
	{"646", "STP", "90646"},
	{"638", "NU MEXICO", ""},
	{"656", "UNAGRA", ""},
	{"659", "ASP INTEGRA OPC", ""},
	{"661", "KLAR", ""},
	{"684", "TRANSFER", ""},
	{"699", "FONDEADORA", ""},
	{"703", "TESORED", ""},
	{"706", "ARCUS", ""},
	{"722", "MERCADO PAGO", ""},
	{"723", "CUENCA", ""},
	{"728", "SPIN BY OXXO", ""},
}

// secondaryInstitutions hold the second settlement channel for banks whose
// primary row carries no participant code.
var secondaryInstitutions = []Institution{
	{"638", "NU MEXICO", "90638"},
	{"656", "UNAGRA", "90656"},
	{"659", "ASP INTEGRA OPC", "90659"},
	{"661", "KLAR", "90661"},
	{"684", "TRANSFER", "90684"},
	{"699", "FONDEADORA", "90699"},
	{"703", "TESORED", "90703"},
	{"706", "ARCUS", "90706"},
	{"722", "MERCADO PAGO", "90722"},
	{"723", "CUENCA", "90723"},
	{"728", "SPIN BY OXXO", "90728"},
}
