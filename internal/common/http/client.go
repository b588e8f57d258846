// internal/common/http/client.go
package http

import (
	"net"
	"net/http"
	"time"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
)

// NewAWSClient returns the outbound client for the signup notifiers. It stays an
// *awshttp.BuildableClient so the SDK can still layer AWS_CA_BUNDLE onto its transport.
func NewAWSClient(timeout time.Duration) *awshttp.BuildableClient {
	return awshttp.NewBuildableClient().
		WithTimeout(timeout).
		WithDialerOptions(func(d *net.Dialer) {
			d.Timeout = 5 * time.Second
			d.KeepAlive = 30 * time.Second
		}).
		WithTransportOptions(func(tr *http.Transport) {
			tr.MaxIdleConns = 20
			tr.MaxIdleConnsPerHost = 5
			tr.IdleConnTimeout = 90 * time.Second
			tr.TLSHandshakeTimeout = 5 * time.Second
		})
}
