// ABOUTME: Health check response shared by the mock API and the client
// ABOUTME: Reports service status and the size of the loaded catalog

package models

// Health is the body of GET /health
type Health struct {
	Status   string `json:"status"`
	Products int    `json:"products"`
	Accounts int    `json:"accounts"`
}
