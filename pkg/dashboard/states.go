package dashboard

// AllStatesLabel is shown instead of ProvinceAll to users
const AllStatesLabel = "Todos os estados"

// NortheastStates lists the states of the Brazilian Northeast region
var NortheastStates = []string{
	"Alagoas",
	"Bahia",
	"Ceará",
	"Maranhão",
	"Paraíba",
	"Pernambuco",
	"Piauí",
	"Rio Grande do Norte",
	"Sergipe",
}

var allStatesAliases = []string{ProvinceAll, AllStatesLabel, "todos", "nordeste"}

// LookupState resolves user input into a province filter value.
// Case and diacritics are ignored. The second value is false for unknown states.
func LookupState(name string) (string, bool) {
	n := Normalize(name)
	for _, alias := range allStatesAliases {
		if n == Normalize(alias) {
			return ProvinceAll, true
		}
	}
	for _, s := range NortheastStates {
		if n == Normalize(s) {
			return s, true
		}
	}
	return "", false
}

// ProvinceLabel is the user facing name of a province filter value
func ProvinceLabel(province string) string {
	if province == ProvinceAll {
		return AllStatesLabel
	}
	return province
}
