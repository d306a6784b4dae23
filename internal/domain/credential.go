package domain

import (
	"encoding/json"
	"time"
)

// Credential identifies a playable account. Raw is the provider payload and
// is forwarded to the launch engine untouched.
type Credential struct {
	AccountID   string
	DisplayName string
	IssuedAt    time.Time
	Raw         json.RawMessage
}

// CredentialView is the read-only projection handed to the presentation
// surface.
type CredentialView struct {
	AccountID   string `json:"accountId"`
	DisplayName string `json:"displayName"`
}

func (c Credential) View() CredentialView {
	return CredentialView{
		AccountID:   c.AccountID,
		DisplayName: c.DisplayName,
	}
}

type AuthorizationKind string

const (
	AuthorizationOffline AuthorizationKind = "offline"
	AuthorizationAccount AuthorizationKind = "account"
)

// Authorization is what the launch engine receives to play as someone.
// Offline authorizations carry only a username, account authorizations only
// the raw credential payload.
type Authorization struct {
	Kind     AuthorizationKind
	Username string
	Account  json.RawMessage
}

func OfflineAuthorization(username string) Authorization {
	return Authorization{Kind: AuthorizationOffline, Username: username}
}

func AccountAuthorization(credential Credential) Authorization {
	return Authorization{Kind: AuthorizationAccount, Account: credential.Raw}
}
