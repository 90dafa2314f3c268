package models

// Client represents an online voice client as rendered to API consumers.
// Query connections (bots, monitoring sessions) are filtered out before
// a Client is ever built.
type Client struct {
	Nickname    string `json:"nickname"`
	Country     string `json:"country"`
	InputMuted  bool   `json:"input_muted"`
	OutputMuted bool   `json:"output_muted"`
	Away        bool   `json:"away"`
}

// ChannelNode is one channel in the rooted topology tree. Clients and
// children keep the enumeration order reported by the remote server.
type ChannelNode struct {
	ID       uint64         `json:"id"`
	Name     string         `json:"name"`
	Clients  []Client       `json:"clients"`
	Children []*ChannelNode `json:"children"`
}

// ServerInfo is the server-wide view: metadata merged with the top-level
// channels of the topology tree. The synthetic root node itself is never
// part of the payload.
type ServerInfo struct {
	Name     string         `json:"name"`
	Version  string         `json:"version"`
	Platform string         `json:"platform"`
	Channels []*ChannelNode `json:"channels"`
}

// StatusResponse is the envelope returned by GET /. The HTTP status is
// always 200; consumers must check Success.
type StatusResponse struct {
	Success    bool        `json:"success"`
	Error      *string     `json:"error"`
	ServerInfo *ServerInfo `json:"server_info"`
}
