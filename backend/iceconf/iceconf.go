// Package iceconf assembles the ICE server list handed to clients by the
// config endpoint. Deployment supplies either a full JSON list, used
// verbatim, or a single TURN credential triple through the environment;
// on the latter path a public STUN server is appended as fallback.
package iceconf

import (
	"encoding/json"
	"os"

	"github.com/pion/webrtc/v4"
)

const fallbackSTUN = "stun:stun.l.google.com:19302"

const (
	envICEServers   = "ICE_SERVERS"
	envTURNURL      = "TURN_URL"
	envTURNUsername = "TURN_USERNAME"
	envTURNPassword = "TURN_PASSWORD"
)

// FromEnv builds the ICE server list from the process environment.
// ICE_SERVERS takes precedence when it holds a valid JSON array; a broken
// value is ignored rather than failing startup.
func FromEnv() []webrtc.ICEServer {
	return build(os.Getenv(envICEServers),
		os.Getenv(envTURNURL), os.Getenv(envTURNUsername), os.Getenv(envTURNPassword))
}

func build(rawJSON, turnURL, turnUser, turnPass string) []webrtc.ICEServer {
	if rawJSON != "" {
		var servers []webrtc.ICEServer
		if err := json.Unmarshal([]byte(rawJSON), &servers); err == nil && len(servers) > 0 {
			return servers
		}
	}

	var servers []webrtc.ICEServer
	if turnURL != "" && turnUser != "" && turnPass != "" {
		servers = append(servers, webrtc.ICEServer{
			URLs:       []string{turnURL},
			Username:   turnUser,
			Credential: turnPass,
		})
	}
	return append(servers, webrtc.ICEServer{URLs: []string{fallbackSTUN}})
}
