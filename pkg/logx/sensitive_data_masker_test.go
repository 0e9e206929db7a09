package logx_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cs2arb/pkg/logx"
)

func TestSensitiveDataMaskerMask(t *testing.T) {
	rq := require.New(t)

	masker := logx.NewSensitiveDataMasker()

	testCases := []struct {
		name   string
		input  []byte
		output []byte
	}{
		{
			name:   "Password",
			input:  []byte(`{"hello":"world","password":"abc123"}`),
			output: []byte(`{"hello":"world","password":"[MASKED]"}`),
		},
		{
			name:   "Password capital letter",
			input:  []byte(`{"hello":"world","Password":"abc123"}`),
			output: []byte(`{"hello":"world","Password":"[MASKED]"}`),
		},
		{
			name:   "API key field",
			input:  []byte(`{"api_key":"k-123","apiKey":"k-456"}`),
			output: []byte(`{"api_key":"[MASKED]","apiKey":"[MASKED]"}`),
		},
		{
			name:   "Bearer authorization header",
			input:  []byte("GET /api/market/items HTTP/1.1\r\nAuthorization: Bearer secret-token\r\nAccept: application/json\r\n"),
			output: []byte("GET /api/market/items HTTP/1.1\r\nAuthorization: Bearer [MASKED]\r\nAccept: application/json\r\n"),
		},
		{
			name:   "Raw authorization header",
			input:  []byte("GET /api/v1/listings HTTP/1.1\r\nAuthorization: raw-csfloat-key\r\n"),
			output: []byte("GET /api/v1/listings HTTP/1.1\r\nAuthorization: [MASKED]\r\n"),
		},
		{
			name:   "Session cookie",
			input:  []byte("GET / HTTP/1.1\r\nCookie: session=abcdef\r\n"),
			output: []byte("GET / HTTP/1.1\r\nCookie: session=[MASKED]\r\n"),
		},
		{
			name:   "Access token",
			input:  []byte(`{"accessToken":"eyJhbGciOiJFUzI1NiIsInR5cC","refreshToken":"eyJhbGciOiJFUzI1NiIsInR5cCI6IkpXVCJ9"}`),
			output: []byte(`{"accessToken":"[MASKED]","refreshToken":"[MASKED]"}`),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			output := masker.Mask(tc.input)

			rq.Equal(tc.output, output, "%s vs %s", tc.output, output)
		})
	}
}

func TestParseLevel(t *testing.T) {
	rq := require.New(t)

	rq.Equal("DEBUG", logx.ParseLevel("debug").String())
	rq.Equal("WARN", logx.ParseLevel("WARNING").String())
	rq.Equal("ERROR", logx.ParseLevel(" error ").String())
	rq.Equal("INFO", logx.ParseLevel("verbose").String())
}
