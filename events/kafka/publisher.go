/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package kafka publishes creation events to a Kafka topic as JSON records
// keyed by entity identifier.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/suparena/entityregistry/config"
	"github.com/suparena/entityregistry/events"
	"github.com/suparena/entityregistry/storagemodels"
)

// producer is the part of *kgo.Client the publisher uses.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// Publisher writes each event synchronously so Publish reports broker errors.
type Publisher struct {
	client producer
	topic  string
}

var _ events.Publisher = (*Publisher)(nil)

// New connects a franz-go client to the configured brokers.
func New(cfg config.KafkaConfig) (*Publisher, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Publisher{client: client, topic: cfg.Topic}, nil
}

// Publish produces one record and waits for the broker acknowledgement.
func (p *Publisher) Publish(ctx context.Context, event storagemodels.CreatedEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   event.ID.Bytes(),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "type", Value: []byte(event.Type)},
			{Key: "event-id", Value: []byte(event.EventID)},
		},
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", p.topic, err)
	}
	return nil
}

// Close shuts down the client.
func (p *Publisher) Close() error {
	p.client.Close()
	return nil
}
