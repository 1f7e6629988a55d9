// Package messaging publishes events to a message broker.
//
// Business code depends on the Publisher interface only, so the backend
// (NATS, NSQ, Kafka, Google Pub/Sub, or an in-memory recorder for local runs
// and tests) is chosen by configuration.
package messaging
