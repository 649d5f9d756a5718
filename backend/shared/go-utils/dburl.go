package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// IsolatedRoleName is the Postgres role a CI run owns. Each role's
// search_path points at a schema of the same name.
func IsolatedRoleName(runnerID, runNumber string) (string, error) {
	if runnerID == "" || runNumber == "" {
		return "", fmt.Errorf("runnerID and runNumber must be non-empty")
	}
	return strings.ToLower(runnerID + "-" + runNumber), nil
}

// WithIsolatedRole rewrites baseURL to log in as the run's isolated role.
// The password is kept and application_name is tagged with the role.
func WithIsolatedRole(baseURL, runnerID, runNumber string) (string, error) {
	role, err := IsolatedRoleName(runnerID, runNumber)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid DB URL: %w", err)
	}

	password, _ := u.User.Password()
	u.User = url.UserPassword(role, password)

	q := u.Query()
	q.Set("application_name", role)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
