package main

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/peek-app/peek-sync/internal/config"
	"github.com/peek-app/peek-sync/internal/wireclient"
)

// newWireClient builds a wireclient.Client for one profile's sync server,
// honoring the ambient network timeouts. ConnectTimeout bounds the TCP
// handshake; DataTimeout bounds the whole request including body transfer.
func newWireClient(netCfg *config.NetworkConfig, serverURL, apiKey string) (*wireclient.Client, error) {
	connectTimeout, err := time.ParseDuration(netCfg.ConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("parsing network.connect_timeout: %w", err)
	}
	dataTimeout, err := time.ParseDuration(netCfg.DataTimeout)
	if err != nil {
		return nil, fmt.Errorf("parsing network.data_timeout: %w", err)
	}

	httpClient := &http.Client{
		Timeout: dataTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
		},
	}

	clientName := netCfg.UserAgent
	if clientName == "" {
		clientName = "peek/" + version
	}

	return wireclient.New(serverURL, apiKey, netCfg.DatastoreVersion, netCfg.ProtocolVersion, clientName, httpClient), nil
}
