package cassandra

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/flowvine/flowvine/pkg/domain"

	"github.com/gocql/gocql"
	"github.com/rs/zerolog/log"
)

type CassandraConnectionTester struct{}

func NewCassandraConnectionTester(deps domain.IntegrationDeps) domain.IntegrationConnectionTester {
	return &CassandraConnectionTester{}
}

func (c *CassandraConnectionTester) TestConnection(ctx context.Context, params domain.TestConnectionParams) (bool, error) {
	data, err := json.Marshal(params.Credential.DecryptedPayload)
	if err != nil {
		return false, err
	}

	var credential CassandraCredential

	if err := json.Unmarshal(data, &credential); err != nil {
		return false, err
	}

	log.Info().Msgf("Testing connection to Cassandra at %s", credential.Hosts)

	hosts := strings.Split(credential.Hosts, ",")
	for idx := range hosts {
		hosts[idx] = strings.TrimSpace(hosts[idx])
	}

	cluster := gocql.NewCluster(hosts...)

	if credential.Port != "" {
		port, err := strconv.Atoi(credential.Port)
		if err != nil {
			return false, fmt.Errorf("port is not a number")
		}

		cluster.Port = port
	}

	if credential.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: credential.Username,
			Password: credential.Password,
		}
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return false, fmt.Errorf("failed to connect to Cassandra: %w", err)
	}
	defer session.Close()

	var releaseVersion string

	if err := session.Query(`SELECT release_version FROM system.local`).WithContext(ctx).Scan(&releaseVersion); err != nil {
		return false, fmt.Errorf("failed to query Cassandra: %w", err)
	}

	return true, nil
}
