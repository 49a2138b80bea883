package infra

import (
	"testing"

	"github.com/amirasaad/studentrelief/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDBConnection_RequiresURL(t *testing.T) {
	_, err := NewDBConnection(&config.DB{}, "test")
	assert.ErrorIs(t, err, errNoDatabaseURL)

	_, err = NewDBConnection(nil, "test")
	assert.ErrorIs(t, err, errNoDatabaseURL)
}

func TestNewDBConnection_UnreachableHost(t *testing.T) {
	if testing.Short() {
		t.Skip("dials the network")
	}
	_, err := NewDBConnection(&config.DB{
		Url:          "postgres://u:p@127.0.0.1:1/db?sslmode=disable&connect_timeout=1",
		MaxOpenConns: 1,
	}, "test")
	require.Error(t, err)
}
