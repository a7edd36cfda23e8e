package config

import (
	"fmt"

	"github.com/dd0wney/threatloom/pkg/intel"
	"github.com/dd0wney/threatloom/pkg/logging"
	"github.com/dd0wney/threatloom/pkg/metrics"
	"github.com/dd0wney/threatloom/pkg/remote"
	"github.com/dd0wney/threatloom/pkg/simulate"
)

// NewSource builds the data source selected by Mode. A zero Seed gives an
// unseeded simulated source.
func (c *Config) NewSource(logger logging.Logger, m *metrics.Registry) (intel.Source, error) {
	if !c.IsRemote() {
		var opts []simulate.Option
		if c.Seed != 0 {
			opts = append(opts, simulate.WithSeed(c.Seed))
		}
		return simulate.NewSource(simulate.NewGenerator(opts...)), nil
	}

	client, err := remote.NewClient(c.RemoteClientConfig(),
		remote.WithLogger(logger),
		remote.WithMetrics(m),
	)
	if err != nil {
		return nil, fmt.Errorf("create remote client: %w", err)
	}
	return remote.NewSource(client), nil
}
