package cbr

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dan9191/credit-assessment/internal/config"
	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const keyRateResponse = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope">
  <soap:Body>
    <KeyRateResponse xmlns="http://web.cbr.ru/">
      <KeyRateResult>
        <diffgr:diffgram xmlns:diffgr="urn:schemas-microsoft-com:xml-diffgram-v1">
          <KeyRate xmlns="">
            <KR><DT>2024-06-14T00:00:00+03:00</DT><Rate>16.00</Rate></KR>
            <KR><DT>2024-06-13T00:00:00+03:00</DT><Rate>15.50</Rate></KR>
          </KeyRate>
        </diffgr:diffgram>
      </KeyRateResult>
    </KeyRateResponse>
  </soap:Body>
</soap:Envelope>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *CBRClient {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	log, _ := test.NewNullLogger()
	return NewCBRClient(&config.Config{CBRURL: srv.URL}, log)
}

func TestCBRClient_GetKeyRate(t *testing.T) {
	var gotBody string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "http://web.cbr.ru/KeyRate", r.Header.Get("SOAPAction"))
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Write([]byte(keyRateResponse))
	})
	client.now = func() time.Time { return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC) }

	rate, err := client.GetKeyRate(context.Background())

	require.NoError(t, err)
	assert.InDelta(t, 21.0, rate, 1e-9)
	assert.Contains(t, gotBody, "<fromDate>2024-05-16</fromDate>")
	assert.Contains(t, gotBody, "<ToDate>2024-06-15</ToDate>")
}

func TestCBRClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "bad status", status: http.StatusServiceUnavailable, wantErr: "unexpected status code: 503"},
		{name: "not xml", status: http.StatusOK, body: "<<<", wantErr: "failed to parse XML"},
		{name: "no rates", status: http.StatusOK, body: "<root/>", wantErr: "no key rate data"},
		{
			name:    "bad rate",
			status:  http.StatusOK,
			body:    "<diffgram><KeyRate><KR><Rate>n/a</Rate></KR></KeyRate></diffgram>",
			wantErr: "failed to parse rate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.GetKeyRate(context.Background())

			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestMemoryCache(t *testing.T) {
	cache := NewMemoryCache()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := cache.Get(ctx)
	assert.ErrorIs(t, err, ErrRateUnavailable)

	require.NoError(t, cache.Set(ctx, 21, time.Hour))
	rate, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 21.0, rate)

	now = now.Add(2 * time.Hour)
	_, err = cache.Get(ctx)
	assert.ErrorIs(t, err, ErrRateUnavailable)
}

func TestRedisCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := NewRedisClient(mr.Addr(), "", 0)
	defer client.Close()
	cache := NewRedisCache(client)
	ctx := context.Background()

	_, err = cache.Get(ctx)
	assert.ErrorIs(t, err, ErrRateUnavailable)

	require.NoError(t, cache.Set(ctx, 20.5, time.Hour))
	rate, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20.5, rate)

	mr.FastForward(2 * time.Hour)
	_, err = cache.Get(ctx)
	assert.ErrorIs(t, err, ErrRateUnavailable)
}

func TestRedisCache_CorruptValue(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	require.NoError(t, mr.Set(keyRateCacheKey, "garbage"))

	client := NewRedisClient(mr.Addr(), "", 0)
	defer client.Close()

	_, err = NewRedisCache(client).Get(context.Background())

	assert.ErrorContains(t, err, "failed to parse cached key rate")
}

type stubFetcher struct {
	rate float64
	err  error
}

func (s stubFetcher) GetKeyRate(context.Context) (float64, error) {
	return s.rate, s.err
}

func TestRefresher_Refresh(t *testing.T) {
	log, _ := test.NewNullLogger()
	r := NewRefresher(stubFetcher{rate: 21}, NewMemoryCache(), time.Hour, log)

	require.NoError(t, r.Refresh(context.Background()))

	rate, err := r.CurrentRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 21.0, rate)
}

func TestRefresher_RefreshError(t *testing.T) {
	log, _ := test.NewNullLogger()
	r := NewRefresher(stubFetcher{err: errors.New("timeout")}, NewMemoryCache(), time.Hour, log)

	err := r.Refresh(context.Background())

	assert.ErrorContains(t, err, "timeout")
	_, err = r.CurrentRate(context.Background())
	assert.ErrorIs(t, err, ErrRateUnavailable)
}

func TestRefresher_StartRejectsBadSchedule(t *testing.T) {
	log, _ := test.NewNullLogger()
	r := NewRefresher(stubFetcher{rate: 21}, NewMemoryCache(), time.Hour, log)

	err := r.Start("not a schedule")

	assert.Error(t, err)
}

func TestRefresher_StartRefreshesImmediately(t *testing.T) {
	log, _ := test.NewNullLogger()
	r := NewRefresher(stubFetcher{rate: 19.5}, NewMemoryCache(), time.Hour, log)

	require.NoError(t, r.Start("@every 1h"))
	defer r.Stop()

	assert.Eventually(t, func() bool {
		rate, err := r.CurrentRate(context.Background())
		return err == nil && rate == 19.5
	}, time.Second, 10*time.Millisecond)
}
