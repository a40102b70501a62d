package events

import "ai-assistant/internal/entities"

// LeadCreatedEvent возникает после сохранения нового лида.
type LeadCreatedEvent struct {
	Lead entities.Lead
}

func (e LeadCreatedEvent) Name() string {
	return "lead.created"
}

// LeadConvertedEvent возникает при переводе лида в статус converted.
type LeadConvertedEvent struct {
	Lead entities.Lead
}

func (e LeadConvertedEvent) Name() string {
	return "lead.converted"
}
