package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gooscale-shopify-relay/internal/ports"

	"golang.org/x/oauth2"
)

// OAuth runs Shopify's authorization code grant for offline tokens
type OAuth struct {
	clientID     string
	clientSecret string
	redirectURL  string
	scopes       string
	httpClient   *http.Client
	shopBaseURL  func(shop string) string
}

var _ ports.OAuthExchanger = (*OAuth)(nil)

type OAuthOption func(*OAuth)

// WithShopBaseURL overrides how a shop domain maps to its admin base URL
func WithShopBaseURL(fn func(shop string) string) OAuthOption {
	return func(o *OAuth) { o.shopBaseURL = fn }
}

func WithOAuthHTTPClient(client *http.Client) OAuthOption {
	return func(o *OAuth) { o.httpClient = client }
}

// NewOAuth creates the exchanger. scopes is the comma separated list Shopify expects.
func NewOAuth(clientID, clientSecret, redirectURL, scopes string, opts ...OAuthOption) *OAuth {
	o := &OAuth{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		scopes:       scopes,
		shopBaseURL:  func(shop string) string { return "https://" + shop },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *OAuth) config(shop string) *oauth2.Config {
	base := strings.TrimRight(o.shopBaseURL(shop), "/")
	return &oauth2.Config{
		ClientID:     o.clientID,
		ClientSecret: o.clientSecret,
		RedirectURL:  o.redirectURL,
		// Shopify wants one comma separated scope parameter
		Scopes: []string{o.scopes},
		Endpoint: oauth2.Endpoint{
			AuthURL:   base + "/admin/oauth/authorize",
			TokenURL:  base + "/admin/oauth/access_token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func (o *OAuth) AuthorizeURL(shop string, state string) string {
	return o.config(shop).AuthCodeURL(state)
}

// ExchangeToken trades code for an offline access token and the granted scopes
func (o *OAuth) ExchangeToken(ctx context.Context, shop string, code string) (string, []string, error) {
	if code == "" {
		return "", nil, errors.New("missing authorization code")
	}
	if o.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)
	}

	token, err := o.config(shop).Exchange(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	var scopes []string
	if granted, ok := token.Extra("scope").(string); ok && granted != "" {
		for _, s := range strings.Split(granted, ",") {
			if s = strings.TrimSpace(s); s != "" {
				scopes = append(scopes, s)
			}
		}
	}
	return token.AccessToken, scopes, nil
}
