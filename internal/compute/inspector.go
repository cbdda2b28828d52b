// Package compute inspects the ephemeral provisioner instance.
//
// The provisioner is expected to power itself off after writing the terminal
// status. When the wait times out instead, knowing whether the instance is
// still running, already off, or gone entirely tells an operator where to
// look first.
package compute

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// StateAbsent is reported when no instance with the given name exists.
const StateAbsent = "absent"

// ServerAPI is the slice of the cloud API the inspector needs.
type ServerAPI interface {
	GetByName(ctx context.Context, name string) (*hcloud.Server, *hcloud.Response, error)
}

// Inspector resolves provisioner instances by name.
type Inspector struct {
	servers ServerAPI
}

// NewInspector creates an Inspector using the given API token.
func NewInspector(token string) *Inspector {
	client := hcloud.NewClient(hcloud.WithToken(token))
	return &Inspector{servers: &client.Server}
}

// NewInspectorWithAPI creates an Inspector over an existing API client.
func NewInspectorWithAPI(api ServerAPI) *Inspector {
	return &Inspector{servers: api}
}

// WorkerState returns the instance's current status string ("running",
// "off", ...) or StateAbsent when no such instance exists.
func (i *Inspector) WorkerState(ctx context.Context, name string) (string, error) {
	server, _, err := i.servers.GetByName(ctx, name)
	if err != nil {
		return "", fmt.Errorf("looking up worker instance %q: %w", name, err)
	}
	if server == nil {
		return StateAbsent, nil
	}
	return string(server.Status), nil
}
