package tsquery

// VoiceClientType is the client_type value of a regular voice client.
// Query connections report other values and are not part of the visible
// topology.
const VoiceClientType = 0

// Channel is one row of a channellist response.
type Channel struct {
	ID           uint64
	ParentID     uint64
	Name         string
	Order        uint64
	TotalClients int
}

// OnlineClient is one row of a clientlist response, with the -voice,
// -away and -country detail flags requested.
type OnlineClient struct {
	ID          uint64
	ChannelID   uint64
	DatabaseID  uint64
	Type        int
	Nickname    string
	Country     string
	InputMuted  bool
	OutputMuted bool
	Away        bool
}

// IsVoice reports whether the client is a regular voice participant.
func (c OnlineClient) IsVoice() bool { return c.Type == VoiceClientType }

func channelFromRecord(m map[string]string) Channel {
	return Channel{
		ID:           mapUint(m, "cid"),
		ParentID:     mapUint(m, "pid"),
		Name:         m["channel_name"],
		Order:        mapUint(m, "channel_order"),
		TotalClients: mapInt(m, "total_clients"),
	}
}

func clientFromRecord(m map[string]string) OnlineClient {
	return OnlineClient{
		ID:          mapUint(m, "clid"),
		ChannelID:   mapUint(m, "cid"),
		DatabaseID:  mapUint(m, "client_database_id"),
		Type:        mapInt(m, "client_type"),
		Nickname:    m["client_nickname"],
		Country:     m["client_country"],
		InputMuted:  mapBool(m, "client_input_muted"),
		OutputMuted: mapBool(m, "client_output_muted"),
		Away:        mapBool(m, "client_away"),
	}
}
