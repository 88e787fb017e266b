package api

import (
	"errors"
	"net/http"

	"gooscale-shopify-relay/internal/application/webhook_handlers"
	"gooscale-shopify-relay/internal/domain"
	"gooscale-shopify-relay/internal/infrastructure/metrics"

	"github.com/rs/zerolog"
)

const (
	headerTopic     = "X-Shopify-Topic"
	headerShop      = "X-Shopify-Shop-Domain"
	headerWebhookID = "X-Shopify-Webhook-Id"
)

// webhookHandler receives every subscribed topic. Once the signature checks
// out Shopify always gets a 200, whatever happens downstream.
func webhookHandler(verifier WebhookVerifier, dispatcher *webhook_handlers.Dispatcher, m *metrics.Metrics, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := verifier.VerifyWebhook(w, r)
		if errors.Is(err, domain.ErrWebhookTooLarge) {
			logTooLarge(logger, r, r.Header.Get(headerTopic))
			m.Webhook(r.Header.Get(headerTopic), "too_large")
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "Webhook payload too large"})
			return
		}
		if err != nil {
			logger.Warn().Err(err).Str("topic", r.Header.Get(headerTopic)).Msg("Webhook signature verification failed")
			m.Webhook(r.Header.Get(headerTopic), "rejected")
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid webhook signature"})
			return
		}

		topic := r.Header.Get(headerTopic)
		shop := r.Header.Get(headerShop)
		if topic == "" || shop == "" {
			logger.Warn().Str("topic", topic).Str("shop", shop).Msg("Webhook without topic or shop header")
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing X-Shopify-Topic or X-Shopify-Shop-Domain header"})
			return
		}

		event := &domain.WebhookEvent{
			Topic:     domain.ParseTopic(topic),
			RawTopic:  topic,
			Shop:      shop,
			WebhookID: r.Header.Get(headerWebhookID),
			Payload:   payload,
		}
		outcome := dispatcher.Dispatch(r.Context(), event)
		m.Webhook(topic, outcome.Result)

		writeJSON(w, http.StatusOK, map[string]string{"message": outcome.Message})
	}
}

// complianceHandler serves one of the mandatory privacy webhooks. The route
// fixes the topic; the answer is an empty 200 even when processing fails.
func complianceHandler(topic string, verifier WebhookVerifier, dispatcher *webhook_handlers.Dispatcher, m *metrics.Metrics, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := verifier.VerifyWebhook(w, r)
		if errors.Is(err, domain.ErrWebhookTooLarge) {
			logTooLarge(logger, r, topic)
			m.Webhook(topic, "too_large")
			http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
			return
		}
		if err != nil {
			logger.Warn().Err(err).Str("topic", topic).Msg("Compliance webhook signature verification failed")
			m.Webhook(topic, "rejected")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		event := &domain.WebhookEvent{
			Topic:     domain.ParseTopic(topic),
			RawTopic:  topic,
			Shop:      r.Header.Get(headerShop),
			WebhookID: r.Header.Get(headerWebhookID),
			Payload:   payload,
		}
		outcome := dispatcher.Dispatch(r.Context(), event)
		m.Webhook(topic, outcome.Result)

		w.WriteHeader(http.StatusOK)
	}
}

func logTooLarge(logger zerolog.Logger, r *http.Request, topic string) {
	logger.Warn().
		Str("topic", topic).
		Str("shop", r.Header.Get(headerShop)).
		Int64("contentLength", r.ContentLength).
		Msg("Webhook payload exceeds size limit")
}
