// Package worker runs the background consumers: domain events from Kafka,
// low-stock alerts from AMQP and barcode scans from MQTT devices.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"guesthouse/config"
	"guesthouse/infras/amqp"
	"guesthouse/infras/kafka"
	"guesthouse/infras/mqtt"
	"guesthouse/infras/otel"
	attendanceDto "guesthouse/internal/domains/attendance/model/dto"
	attendanceService "guesthouse/internal/domains/attendance/service"
	inventoryModel "guesthouse/internal/domains/inventory/model"
	statsService "guesthouse/internal/domains/stats/service"
	"guesthouse/shared/event"
	"guesthouse/shared/principal"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

const (
	otelWorkerScopeName = "worker"
	scanResultSuffix    = "/result"
	mqttDeviceID        = "mqtt"
	traceFlushTimeout   = 5 * time.Second
)

var ErrInvalidScan = errors.New("scan payload has no code")

type scanResult struct {
	Code   string                      `json:"code"`
	Result *attendanceDto.ScanResponse `json:"result,omitempty"`
	Error  string                      `json:"error,omitempty"`
}

type Worker struct {
	cfg        *config.Config
	kafka      kafka.Client
	alerts     amqp.Client
	scans      mqtt.Client
	stats      statsService.Stats
	attendance attendanceService.Attendance
	otel       otel.Otel
}

// New builds the worker. scans may be nil when MQTT ingestion is disabled.
func New(
	cfg *config.Config,
	kafkaClient kafka.Client,
	alerts amqp.Client,
	scans mqtt.Client,
	stats statsService.Stats,
	attendance attendanceService.Attendance,
	otel otel.Otel,
) *Worker {
	return &Worker{
		cfg:        cfg,
		kafka:      kafkaClient,
		alerts:     alerts,
		scans:      scans,
		stats:      stats,
		attendance: attendance,
		otel:       otel,
	}
}

// Run starts every configured consumer and blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	if len(w.cfg.Kafka.Brokers) > 0 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			w.kafka.Consume(ctx, w.cfg.Kafka.ConsumerGroup, w.cfg.Kafka.Topic, func(msg kafkaGo.Message) {
				if err := w.HandleEvent(ctx, msg); err != nil {
					log.Error().Err(err).Str("key", string(msg.Key)).Msg("failed to handle domain event")
				}
			})
		}()
	} else {
		log.Warn().Msg("no kafka brokers configured, stats cache relies on its TTL")
	}

	wg.Add(1)

	go func() {
		defer wg.Done()

		if err := w.alerts.Consume(ctx, w.HandleLowStock); err != nil && !errors.Is(err, amqp.ErrNotConnected) {
			log.Error().Err(err).Msg("low stock consumer stopped")
		}
	}()

	if w.scans != nil {
		topic := w.cfg.MQTT.Topic

		if err := w.scans.Subscribe(topic, mqtt.QoSAtLeastOnce, func(_ string, payload []byte) error {
			return w.HandleScan(ctx, payload)
		}); err != nil {
			return fmt.Errorf("subscribing to scans: %w", err)
		}

		log.Info().Str("topic", topic).Msg("listening for scanner messages")
	}

	<-ctx.Done()

	wg.Wait()

	if w.scans != nil {
		w.scans.Disconnect()
	}

	if err := w.alerts.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close AMQP client")
	}

	if err := w.kafka.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close Kafka client")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), traceFlushTimeout)
	defer cancel()

	if err := w.otel.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to flush traces")
	}

	return nil
}

// HandleEvent drops cached reports whenever data they aggregate has changed.
func (w *Worker) HandleEvent(ctx context.Context, msg kafkaGo.Message) (err error) {
	ctx, scope := w.otel.NewScope(ctx, otelWorkerScopeName, otelWorkerScopeName+".HandleEvent")
	defer scope.End()
	defer scope.TraceIfError(err)

	evt, err := kafka.Decode[event.Event](msg)
	if err != nil {
		return fmt.Errorf("decoding event: %w", err)
	}

	scope.SetAttributes(map[string]any{
		"event.type":   evt.Type,
		"event.entity": evt.EntityID,
	})

	if evt.Type == event.TypeAttendanceScan {
		return nil
	}

	if err = w.stats.Invalidate(ctx); err != nil {
		return fmt.Errorf("invalidating stats after %s: %w", evt.Type, err)
	}

	log.Debug().Str("type", evt.Type).Str("entity", evt.EntityID).Msg("stats cache invalidated")

	return nil
}

// HandleLowStock records an alert. Malformed bodies are dropped rather than requeued.
func (w *Worker) HandleLowStock(ctx context.Context, body []byte) error {
	_, scope := w.otel.NewScope(ctx, otelWorkerScopeName, otelWorkerScopeName+".HandleLowStock")
	defer scope.End()

	var alert inventoryModel.LowStockAlert
	if err := json.Unmarshal(body, &alert); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("discarding malformed low stock alert")

		return nil
	}

	log.Warn().
		Str("item_id", alert.ItemID).
		Str("sku", alert.SKU).
		Str("name", alert.Name).
		Int("quantity", alert.Quantity).
		Int("min_threshold", alert.MinThreshold).
		Str("movement", alert.MovementType).
		Msg("inventory item is low on stock")

	return nil
}

// HandleScan runs a device scan and publishes the outcome on <topic>/result.
func (w *Worker) HandleScan(ctx context.Context, payload []byte) (err error) {
	ctx, scope := w.otel.NewScope(ctx, otelWorkerScopeName, otelWorkerScopeName+".HandleScan")
	defer scope.End()
	defer scope.TraceIfError(err)

	var req attendanceDto.ScanRequest
	if err = json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("decoding scan: %w", err)
	}

	code := req.Badge()
	if code == "" {
		return ErrInvalidScan
	}

	result := scanResult{Code: code}

	res, scanErr := w.attendance.Scan(ctx, principal.Scanner(mqttDeviceID), code)
	if scanErr != nil {
		log.Error().Err(scanErr).Str("code", code).Msg("scanner message rejected")

		result.Error = scanErr.Error()
	} else {
		result.Result = &res

		scope.AddEvent("Attendance " + res.Action + " for staff " + res.Staff.ID)
	}

	out, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding scan result: %w", err)
	}

	if err = w.scans.Publish(w.cfg.MQTT.Topic+scanResultSuffix, mqtt.QoSAtLeastOnce, false, out); err != nil {
		return fmt.Errorf("publishing scan result: %w", err)
	}

	return nil
}
