package dto

import "chatpulse/pkg/realtime"

type SendSyncMessageRequest struct {
	Type string                 `json:"type" validate:"required,max=64"`
	Data map[string]interface{} `json:"data"`
}

type SyncSessionResponse struct {
	Identifier       string                    `json:"identifier"`
	State            realtime.ConnectionState  `json:"state"`
	Status           realtime.GlobalSyncStatus `json:"status"`
	Messages         []realtime.Message        `json:"messages"`
	TransportErrored bool                      `json:"transport_errored"`
	LastError        string                    `json:"last_error,omitempty"`
}
