package dashboard

// ProvinceAll is the province filter value matching every region
const ProvinceAll = "All"

const (
	DefaultCountry = "BRA"
	DefaultDate    = "2022-07-01"
)

// Filters are immutable during a fetch cycle; change them by creating a new value
type Filters struct {
	Country      string
	Province     string
	SpecificDate string
}

func DefaultFilters() Filters {
	return Filters{
		Country:      DefaultCountry,
		Province:     ProvinceAll,
		SpecificDate: DefaultDate,
	}
}

func (f Filters) WithCountry(country string) Filters {
	f.Country = country
	return f
}

func (f Filters) WithProvince(province string) Filters {
	f.Province = province
	return f
}

func (f Filters) WithDate(date string) Filters {
	f.SpecificDate = date
	return f
}

// DailyRecord holds summed counts of a single day under the active filters
type DailyRecord struct {
	Confirmed int64
	Deaths    int64
	Recovered int64
	Active    int64
}

// DateRangeResult is one day of the window.
// Err is set when Data has been defaulted to the zero record because the fetch failed.
type DateRangeResult struct {
	Date string
	Data DailyRecord
	Err  error
}

// Stats is the headline snapshot formatted for display
type Stats struct {
	Total     string
	Deaths    string
	Recovered string
	Active    string
}

type TableRow struct {
	Date      string
	Cases     string
	Deaths    string
	Recovered string
	Active    string
}
