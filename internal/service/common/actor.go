//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"
	"os/user"

	pb "github.com/oshokin/drowsiness-alarm/internal/pb/v1"
)

// DetectSource gathers host and user information identifying this monitor.
// Returns the wire type because callers pass it directly to the relay client.
func DetectSource() (*pb.Source, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	return &pb.Source{
		Hostname: hostname,
		Username: currentUser.Username,
	}, nil
}
