package realtime

import (
	"fmt"
	"log"

	pubnub "github.com/pubnub/go"
)

// Publisher fans a coalesced table refresh out to the admin console
// clients subscribed to the table channel.
type Publisher struct {
	pn *pubnub.PubNub
}

func NewPublisher(pn *pubnub.PubNub) *Publisher {
	return &Publisher{pn: pn}
}

// TableChannel names the per-collection refresh channel.
func TableChannel(collection string) string {
	return fmt.Sprintf("table-%s", collection)
}

// RefreshSignal tells subscribed list views to refetch their page.
func (p *Publisher) RefreshSignal(collection string) {
	if p.pn == nil {
		return
	}
	_, _, err := p.pn.Publish().
		Channel(TableChannel(collection)).
		Message(map[string]any{
			"type":  "refresh",
			"table": collection,
		}).
		Execute()
	if err != nil {
		log.Printf("refresh publish failed for %s: %v", collection, err)
	}
}
