package centralbank

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhtran-dev/savings-ledger/internal/config"
)

const feedResponse = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope">
  <soap:Body>
    <KeyRateResponse xmlns="http://web.cbr.ru/">
      <KeyRateResult>
        <diffgram>
          <KeyRate>
            <KR><DT>2026-08-20T00:00:00+03:00</DT><Rate>16.50</Rate></KR>
            <KR><DT>2026-08-19T00:00:00+03:00</DT><Rate>16.00</Rate></KR>
          </KeyRate>
        </diffgram>
      </KeyRateResult>
    </KeyRateResponse>
  </soap:Body>
</soap:Envelope>`

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewClient(&config.Config{RateFeedURL: srv.URL}, logger)
}

func TestGetKeyRate(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.Header.Get("Content-Type"), "soap+xml")
		_, _ = w.Write([]byte(feedResponse))
	})

	rate, err := c.GetKeyRate()
	require.NoError(t, err)
	assert.Equal(t, 16.50, rate, "latest quote wins")
}

func TestGetKeyRateServerError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})
	_, err := c.GetKeyRate()
	assert.Error(t, err)
}

func TestGetKeyRateEmptyFeed(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<?xml version="1.0"?><Envelope><Body/></Envelope>`))
	})
	_, err := c.GetKeyRate()
	assert.ErrorContains(t, err, "no key rate data")
}
