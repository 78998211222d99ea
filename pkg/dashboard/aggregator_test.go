package dashboard

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilyalavrinov/nordeste/pkg/covidapi"
)

const reportsURL = covidapi.DefaultBaseURL + "/reports"

const twoProvincesBody = `{"data":[
	{"region":{"province":"Bahia"},"confirmed":1000,"deaths":10,"recovered":900,"active":90},
	{"region":{"province":"Bahia"},"confirmed":500,"deaths":5,"recovered":400,"active":95},
	{"region":{"province":"Ceará"},"confirmed":200,"deaths":2,"recovered":150,"active":48},
	{"confirmed":99999,"deaths":99,"recovered":99,"active":99}
]}`

func newTestAggregator() *Aggregator {
	return NewAggregator(covidapi.NewClient("", nil))
}

func TestFetchDayProvince(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder("GET", reportsURL, httpmock.NewStringResponder(200, twoProvincesBody))

	f := DefaultFilters().WithProvince("Bahia")
	res := newTestAggregator().FetchDay(context.Background(), "2022-07-01", f)
	require.NoError(t, res.Err)
	assert.Equal(t, "2022-07-01", res.Date)
	assert.Equal(t, DailyRecord{Confirmed: 1500, Deaths: 15, Recovered: 1300, Active: 185}, res.Data)
}

func TestFetchDayProvinceDiacritics(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder("GET", reportsURL, httpmock.NewStringResponder(200, twoProvincesBody))

	res := newTestAggregator().FetchDay(context.Background(), "2022-07-01", DefaultFilters().WithProvince("CEARA"))
	assert.Equal(t, DailyRecord{Confirmed: 200, Deaths: 2, Recovered: 150, Active: 48}, res.Data)
}

func TestFetchDayAll(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder("GET", reportsURL, httpmock.NewStringResponder(200, twoProvincesBody))

	res := newTestAggregator().FetchDay(context.Background(), "2022-07-01", DefaultFilters())
	// the row without region is never counted
	assert.Equal(t, DailyRecord{Confirmed: 1700, Deaths: 17, Recovered: 1450, Active: 233}, res.Data)
}

func TestFetchDayEmpty(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder("GET", reportsURL, httpmock.NewStringResponder(200, `{"data":[]}`))

	res := newTestAggregator().FetchDay(context.Background(), "2022-07-01", DefaultFilters())
	assert.NoError(t, res.Err)
	assert.Equal(t, DailyRecord{}, res.Data)
}

func TestFetchDayFailuresGiveZeroRecord(t *testing.T) {
	responders := map[string]httpmock.Responder{
		"status":    httpmock.NewStringResponder(500, twoProvincesBody),
		"transport": httpmock.NewErrorResponder(errors.New("connection refused")),
		"malformed": httpmock.NewStringResponder(200, `<html>`),
	}
	for name, responder := range responders {
		t.Run(name, func(t *testing.T) {
			httpmock.Activate()
			defer httpmock.DeactivateAndReset()
			httpmock.RegisterResponder("GET", reportsURL, responder)

			res := newTestAggregator().FetchDay(context.Background(), "2022-07-01", DefaultFilters())
			assert.Error(t, res.Err)
			assert.Equal(t, DailyRecord{}, res.Data)
		})
	}
}

func TestFetchWindowRequests(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	var mu sync.Mutex
	seen := make(map[string]int)
	isos := make(map[string]bool)
	httpmock.RegisterResponder("GET", reportsURL, func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		mu.Lock()
		seen[q.Get("date")]++
		isos[q.Get("iso")] = true
		mu.Unlock()
		return httpmock.NewStringResponse(200, `{"data":[]}`), nil
	})

	results, err := newTestAggregator().FetchWindow(context.Background(), DefaultFilters().WithDate("2022-03-01"))
	require.NoError(t, err)
	require.Len(t, results, 7)

	assert.Equal(t, 7, httpmock.GetTotalCallCount())
	assert.Equal(t, map[string]bool{"BRA": true}, isos)
	window, _ := DateWindow("2022-03-01")
	for _, d := range window {
		assert.Equal(t, 1, seen[d], d)
	}
}

func TestFetchWindowKeepsOrder(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	window, err := DateWindow("2022-07-01")
	require.NoError(t, err)
	confirmed := make(map[string]int, len(window))
	for i, d := range window {
		confirmed[d] = i + 1
	}

	httpmock.RegisterResponder("GET", reportsURL, func(req *http.Request) (*http.Response, error) {
		date := req.URL.Query().Get("date")
		// earlier days answer later
		time.Sleep(time.Duration(len(window)-confirmed[date]) * 10 * time.Millisecond)
		return httpmock.NewJsonResponse(200, map[string]interface{}{
			"data": []map[string]interface{}{
				{"region": map[string]string{"province": "Bahia"}, "confirmed": confirmed[date]},
			},
		})
	})

	results, err := newTestAggregator().FetchWindow(context.Background(), DefaultFilters())
	require.NoError(t, err)
	require.Len(t, results, 7)
	for i, r := range results {
		assert.Equal(t, window[i], r.Date)
		assert.Equal(t, int64(i+1), r.Data.Confirmed)
	}
	assert.Equal(t, int64(4), Current(results).Confirmed)
}

func TestFetchWindowOneFailure(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", reportsURL, func(req *http.Request) (*http.Response, error) {
		if req.URL.Query().Get("date") == "2022-06-30" {
			return nil, errors.New("network is unreachable")
		}
		return httpmock.NewStringResponse(200, twoProvincesBody), nil
	})

	results, err := newTestAggregator().FetchWindow(context.Background(), DefaultFilters().WithProvince("Bahia"))
	require.NoError(t, err)
	require.Len(t, results, 7)
	for _, r := range results {
		if r.Date == "2022-06-30" {
			assert.Error(t, r.Err)
			assert.Equal(t, DailyRecord{}, r.Data)
			continue
		}
		assert.NoError(t, r.Err)
		assert.Equal(t, int64(1500), r.Data.Confirmed)
	}
}

func TestFetchWindowInvalidDate(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder("GET", reportsURL, httpmock.NewStringResponder(200, twoProvincesBody))

	_, err := newTestAggregator().FetchWindow(context.Background(), DefaultFilters().WithDate("yesterday"))
	assert.Error(t, err)
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestFetchWindowCancelled(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder("GET", reportsURL, httpmock.NewStringResponder(200, twoProvincesBody))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := newTestAggregator().FetchWindow(ctx, DefaultFilters())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results)
}

func TestFetchDayFractionalCountsInOtherProvince(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder("GET", reportsURL, httpmock.NewStringResponder(200, `{"data":[
		{"region":{"province":"Bahia"},"confirmed":1500,"deaths":15,"recovered":1300,"active":185},
		{"region":{"province":"Ceará"},"confirmed":200,"deaths":2,"recovered":150,"active":48.0}
	]}`))

	res := newTestAggregator().FetchDay(context.Background(), "2022-07-01", DefaultFilters().WithProvince("Bahia"))
	require.NoError(t, res.Err)
	assert.Equal(t, DailyRecord{Confirmed: 1500, Deaths: 15, Recovered: 1300, Active: 185}, res.Data)
}

func TestSumReportsFractionalCounts(t *testing.T) {
	bahia := "Bahia"
	reports := []covidapi.Report{
		{Region: &covidapi.Region{Province: &bahia}, Confirmed: 10.25, Active: 0.5},
		{Region: &covidapi.Region{Province: &bahia}, Confirmed: 0.25, Active: 0.25},
	}
	assert.Equal(t, DailyRecord{Confirmed: 11, Active: 1}, SumReports(reports, "Bahia"))
}

func TestSumReportsMissingRegionProvince(t *testing.T) {
	reports := []covidapi.Report{
		{Region: &covidapi.Region{}, Confirmed: 5},
		{Region: nil, Confirmed: 7},
	}
	assert.Equal(t, int64(5), SumReports(reports, ProvinceAll).Confirmed)
	assert.Equal(t, int64(0), SumReports(reports, "Bahia").Confirmed)
}
