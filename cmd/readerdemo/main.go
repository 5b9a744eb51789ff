// Command readerdemo wires a SimpleDataReader against a synthetic writer
// goroutine so the full reader-side stack — TopicCache, the notification
// bridge, Redis-backed hash-key resolution, and Prometheus metrics — can
// be exercised end to end outside of a test binary.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"

	ddsreader "github.com/nimbusdds/ddsreader"
)

// sensorKey is the instance key for sensorReading: one live reading per
// sensor ID.
type sensorKey string

func (k sensorKey) HashKey() ddsreader.KeyHash {
	var h ddsreader.KeyHash
	copy(h[:], []byte(k))
	return h
}

type sensorReading struct {
	SensorID    string
	Temperature float64
}

func (s sensorReading) Key() sensorKey { return sensorKey(s.SensorID) }

// demoParticipant is the minimal Participant this demo needs; it is always
// alive for the life of the process.
type demoParticipant struct{}

func (demoParticipant) Alive() bool { return true }

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisAddr := os.Getenv("DDSREADER_REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer redisClient.Close()

	topicName := "fleet/sensors/temperature"
	topicCache := ddsreader.NewTopicCache(topicName)

	reader, err := ddsreader.NewSimpleDataReader[sensorKey](
		demoParticipant{},
		ddsreader.EntityId{1, 0, 0, 1},
		topicName,
		"SensorReading",
		ddsreader.QosPolicies{Reliability: ddsreader.Reliable},
		topicCache,
		ddsreader.ReaderConfig[sensorKey]{
			HashKeyStore:  ddsreader.NewRedisHashKeyStore[sensorKey](redisClient, topicName),
			EnableMetrics: true,
		},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("readerdemo: failed to construct SimpleDataReader")
	}
	defer reader.Close()

	go serveMetrics(":9099")
	go runSyntheticWriter(ctx, reader)
	runTakeLoop(ctx, reader)

	log.Info().Msg("readerdemo: shutting down")
}

// serveMetrics exposes the Prometheus registry the reader's Metrics
// registered against.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Info().Str("addr", addr).Msg("readerdemo: serving /metrics")
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("readerdemo: metrics server stopped")
	}
}

// runSyntheticWriter stands in for a real RTPS receive path: it appends
// CacheChange values to the reader via AppendChange, which writes
// through to the shared TopicCache and pings the reader's notification
// bridge, the way a real receive path would after decoding an incoming
// DATA submessage.
func runSyntheticWriter(ctx context.Context, reader *ddsreader.SimpleDataReader[sensorKey]) {
	writer := ddsreader.NewGUID(ddsreader.EntityId{9, 0, 0, 1})
	var sn ddsreader.SequenceNumber
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sn++
			payload, err := msgpack.Marshal(sensorReading{
				SensorID:    fmt.Sprintf("sensor-%d", sn%3),
				Temperature: 18.0 + float64(sn%10),
			})
			if err != nil {
				log.Error().Err(err).Msg("readerdemo: failed to encode synthetic reading")
				continue
			}
			reader.AppendChange(ddsreader.NewDataChange(
				writer, sn, ddsreader.TimestampNow(), payload, ddsreader.ReprMsgpack,
			))

			// Every tenth reading, follow it with a dispose of the same
			// sensor by key hash, exercising the hash-key resolution path a
			// real deployment would rely on across process restarts.
			if sn%10 == 0 {
				key := sensorKey(fmt.Sprintf("sensor-%d", sn%3))
				sn++
				reader.AppendChange(ddsreader.NewDisposeByKeyHashChange(writer, sn, ddsreader.TimestampNow(), key.HashKey()))
			}
		}
	}
}

// runTakeLoop drives the reader's async sample stream and status stream
// concurrently, logging every delivered sample and status event until ctx
// is cancelled.
func runTakeLoop(ctx context.Context, reader *ddsreader.SimpleDataReader[sensorKey]) {
	stream := ddsreader.NewSampleStream[sensorKey, sensorReading](
		reader, ddsreader.MsgpackAdapter[sensorReading]{}, ddsreader.MsgpackKeyAdapter[sensorKey]{})
	statusStream := reader.AsStatusStream()

	go func() {
		for {
			status, err := statusStream.Next(ctx)
			if err != nil {
				return
			}
			log.Info().Str("kind", status.Kind.String()).Int("count", status.Count).Msg("readerdemo: status event")
		}
	}()

	for {
		change, err := stream.Next(ctx)
		if err != nil {
			return
		}
		if change.Sample.IsDispose() {
			log.Info().Str("sensor", string(change.Sample.Key)).Msg("readerdemo: sensor disposed")
			continue
		}
		log.Info().
			Str("sensor", change.Sample.Value.SensorID).
			Float64("temperature", change.Sample.Value.Temperature).
			Int64("sn", int64(change.SequenceNumber)).
			Msg("readerdemo: sample delivered")
	}
}
