package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	kafka "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/alexanderjulianmartinez/sqlite-schema/internal/source"
)

// Writer is the part of *kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ColumnEvent is the JSON value of one published message.
type ColumnEvent struct {
	SnapshotID string `json:"snapshot_id"`
	Database   string `json:"database"`
	Table      string `json:"table"`
	Column     string `json:"column"`
	Type       string `json:"type"`
	Ordinal    int    `json:"ordinal"`
}

type Publisher struct {
	w   Writer
	log logrus.FieldLogger
	now func() time.Time
}

// NewKafkaWriter builds a writer for a comma separated broker list.
func NewKafkaWriter(brokersCSV, topic string) (*kafka.Writer, error) {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers provided")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}, nil
}

func New(w Writer, log logrus.FieldLogger) *Publisher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Publisher{w: w, log: log, now: time.Now}
}

// Publish writes one message per column record, keyed by table so a
// table's columns stay in one partition and keep their order. It returns
// the snapshot ID shared by every message.
func (p *Publisher) Publish(ctx context.Context, info *source.DatabaseInfo) (string, error) {
	snapshotID := uuid.NewString()
	msgs, err := Messages(snapshotID, info, p.now())
	if err != nil {
		return "", err
	}
	if len(msgs) == 0 {
		p.log.WithField("database", info.Name).Info("no columns to publish")
		return snapshotID, nil
	}

	if err := p.w.WriteMessages(ctx, msgs...); err != nil {
		return "", fmt.Errorf("publish snapshot %s: %w", snapshotID, err)
	}
	p.log.WithFields(logrus.Fields{
		"database": info.Name,
		"snapshot": snapshotID,
	}).Infof("published %d column records", len(msgs))
	return snapshotID, nil
}

func (p *Publisher) Close() error {
	return p.w.Close()
}

// Messages encodes info as Kafka messages. Ordinals restart at zero for
// each table.
func Messages(snapshotID string, info *source.DatabaseInfo, at time.Time) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(info.Tables))
	ordinals := map[string]int{}
	for _, t := range info.Tables {
		ev := ColumnEvent{
			SnapshotID: snapshotID,
			Database:   info.Name,
			Table:      t.Table,
			Column:     t.Column,
			Type:       t.Type,
			Ordinal:    ordinals[t.Table],
		}
		ordinals[t.Table]++

		value, err := json.Marshal(ev)
		if err != nil {
			return nil, fmt.Errorf("encode column %s.%s: %w", t.Table, t.Column, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:     []byte(t.Table),
			Value:   value,
			Time:    at,
			Headers: []kafka.Header{{Key: "snapshot-id", Value: []byte(snapshotID)}},
		})
	}
	return msgs, nil
}
