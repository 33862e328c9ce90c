package models

// PasswordEntry is a stored credential for an external service or site.
//
// The Password field always holds encrypted material once the record has
// passed through the persistence gateway; plaintext never reaches storage.
type PasswordEntry struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`

	// Service is the service or site name the credential belongs to.
	Service string `json:"service"`

	// Username is the username or email used to sign in.
	Username string `json:"username"`

	// Password is the encrypted password material.
	Password string `json:"password"`

	// Category groups entries for browsing (free text).
	Category string `json:"category"`

	Notes string `json:"notes"`

	CreatedAt int64 `json:"created_at"`
}

// ServerUser is one account on a managed server.
type ServerUser struct {
	Username string `json:"username"`

	// Password is the encrypted password material.
	Password string `json:"password"`
}

// ServerCredential holds VPN and per-server account credentials for a client
// host.
type ServerCredential struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`

	// Client is the customer the server belongs to.
	Client string `json:"client"`

	// ServerName identifies the host.
	ServerName string `json:"server_name"`

	// VPNName is the VPN profile name or IP used to reach the host.
	VPNName string `json:"vpn_name"`

	// VPNPassword is the encrypted VPN password material.
	VPNPassword string `json:"vpn_password"`

	// Users are the per-server accounts, in entry order.
	Users []ServerUser `json:"users"`

	CreatedAt int64 `json:"created_at"`
}
