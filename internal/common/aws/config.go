// internal/common/aws/config.go
package aws

import (
	"context"
	"net/http"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

// LoadConfig resolves credentials from the default chain for region.
// httpClient may be nil.
func LoadConfig(ctx context.Context, region string, httpClient *http.Client) (awssdk.Config, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if httpClient != nil {
		opts = append(opts, config.WithHTTPClient(httpClient))
	}
	return config.LoadDefaultConfig(ctx, opts...)
}
