package statusService

import (
	"github.com/nikhil/tsview/internal/logger"
	"github.com/nikhil/tsview/internal/models"
	"github.com/nikhil/tsview/internal/tsquery"
)

// rootChannelID is the synthetic root of the topology tree. The voice
// server never assigns id 0 to a real channel; top-level channels declare
// it as their parent.
const rootChannelID = 0

// BuildServerInfo turns the flat channel and client lists into the rooted
// topology view, merged with the server metadata map. The root node itself
// is not part of the result; its children are.
func BuildServerInfo(meta map[string]string, channels []tsquery.Channel, clients []tsquery.OnlineClient, log *logger.Logger) *models.ServerInfo {
	root := buildTree(channels, clients, log)
	return &models.ServerInfo{
		Name:     meta["virtualserver_name"],
		Version:  meta["virtualserver_version"],
		Platform: meta["virtualserver_platform"],
		Channels: root.Children,
	}
}

// buildTree links channels in two passes over an id-indexed node table, so
// the input order of the channel list does not matter: a child listed
// before its parent still ends up attached. Channels whose parent id never
// appears are orphans; they are logged and left out of the tree.
func buildTree(channels []tsquery.Channel, clients []tsquery.OnlineClient, log *logger.Logger) *models.ChannelNode {
	root := &models.ChannelNode{
		ID:       rootChannelID,
		Name:     "Root",
		Clients:  []models.Client{},
		Children: []*models.ChannelNode{},
	}

	// Attach voice clients by exact channel id, keeping enumeration order.
	// Query connections never show up in the topology.
	clientsByChannel := make(map[uint64][]models.Client)
	for _, cl := range clients {
		if !cl.IsVoice() {
			continue
		}
		clientsByChannel[cl.ChannelID] = append(clientsByChannel[cl.ChannelID], models.Client{
			Nickname:    cl.Nickname,
			Country:     cl.Country,
			InputMuted:  cl.InputMuted,
			OutputMuted: cl.OutputMuted,
			Away:        cl.Away,
		})
	}

	nodes := make(map[uint64]*models.ChannelNode, len(channels)+1)
	nodes[rootChannelID] = root

	accepted := make([]tsquery.Channel, 0, len(channels))
	for _, ch := range channels {
		if ch.ID == rootChannelID {
			log.Warn("channel uses the reserved root id, skipping", "name", ch.Name)
			continue
		}
		if _, dup := nodes[ch.ID]; dup {
			log.Warn("duplicate channel id, skipping", "id", ch.ID, "name", ch.Name)
			continue
		}
		clientList := clientsByChannel[ch.ID]
		if clientList == nil {
			clientList = []models.Client{}
		}
		nodes[ch.ID] = &models.ChannelNode{
			ID:       ch.ID,
			Name:     ch.Name,
			Clients:  clientList,
			Children: []*models.ChannelNode{},
		}
		accepted = append(accepted, ch)
	}

	for _, ch := range accepted {
		node := nodes[ch.ID]
		parent, ok := nodes[ch.ParentID]
		if !ok {
			log.Warn("orphaned channel: parent not in channel list",
				"id", ch.ID, "name", ch.Name, "parent_id", ch.ParentID)
			continue
		}
		if parent == node {
			log.Warn("channel declares itself as parent, skipping", "id", ch.ID, "name", ch.Name)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	return root
}

// countTree returns the number of channels and voice clients reachable
// from the given top-level channels.
func countTree(channels []*models.ChannelNode) (channelCount, clientCount int) {
	for _, ch := range channels {
		channelCount++
		clientCount += len(ch.Clients)
		subChannels, subClients := countTree(ch.Children)
		channelCount += subChannels
		clientCount += subClients
	}
	return channelCount, clientCount
}
