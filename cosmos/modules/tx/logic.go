package tx

import (
	"fmt"
)

const (
	EventTypeWasm          = "wasm"
	EventTypeExecute       = "execute"
	EventAttributeContract = "_contract_address"
	EventAttributeAction   = "action"
	EventAttributeAmount   = "amount"
)

func GetMessageLogForIndex(logs []LogMessage, index int) *LogMessage {
	for _, log := range logs {
		if log.MessageIndex == index {
			return &log
		}
	}

	return nil
}

func GetEventsWithType(eventType string, msg *LogMessage) []LogMessageEvent {
	events := []LogMessageEvent{}
	if msg == nil || msg.Events == nil {
		return nil
	}

	for _, logEvent := range msg.Events {
		if logEvent.Type == eventType {
			events = append(events, logEvent)
		}
	}

	return events
}

// GetValueForAttribute returns the first attribute with the given key
func GetValueForAttribute(key string, evt *LogMessageEvent) (string, error) {
	if evt == nil || evt.Attributes == nil {
		return "", nil
	}

	for _, attr := range evt.Attributes {
		if attr.Key == key {
			return attr.Value, nil
		}
	}

	return "", fmt.Errorf("Attribute %s missing from event", key)
}

func GetLastValueForAttribute(key string, evt *LogMessageEvent) string {
	if evt == nil || evt.Attributes == nil {
		return ""
	}

	for i := len(evt.Attributes) - 1; i >= 0; i-- {
		attr := evt.Attributes[i]
		if attr.Key == key {
			return attr.Value
		}
	}

	return ""
}

// GetContractActions returns the "action" attributes the contract emitted in its wasm events, in emission order.
// A contract call that triggers callbacks (e.g. request_price_feed answered by receive_price) emits several.
func GetContractActions(contract string, msg *LogMessage) []string {
	actions := []string{}
	for _, evt := range GetEventsWithType(EventTypeWasm, msg) {
		evt := evt
		if addr, err := GetValueForAttribute(EventAttributeContract, &evt); err != nil || addr != contract {
			continue
		}
		if action := GetLastValueForAttribute(EventAttributeAction, &evt); action != "" {
			actions = append(actions, action)
		}
	}
	return actions
}
