package shopify

import (
	"strings"

	"gooscale-shopify-relay/internal/domain"
)

const myshopifySuffix = ".myshopify.com"

// ShopValidator accepts *.myshopify.com domains plus one optional custom domain
type ShopValidator struct {
	customDomain string
}

func NewShopValidator(customDomain string) ShopValidator {
	return ShopValidator{customDomain: strings.ToLower(strings.TrimSpace(customDomain))}
}

// Normalize lowercases shop, strips a scheme and trailing slash, and
// validates the result.
func (v ShopValidator) Normalize(shop string) (string, error) {
	shop = strings.ToLower(strings.TrimSpace(shop))
	shop = strings.TrimPrefix(shop, "https://")
	shop = strings.TrimPrefix(shop, "http://")
	shop = strings.TrimSuffix(shop, "/")
	if shop == "" {
		return "", domain.ErrMissingShopDomain
	}
	if !v.IsValid(shop) {
		return "", domain.ErrInvalidShopDomain
	}
	return shop, nil
}

func (v ShopValidator) IsValid(shop string) bool {
	if strings.ContainsAny(shop, "/ ?#@:") {
		return false
	}
	if v.customDomain != "" && shop == v.customDomain {
		return true
	}
	if !strings.HasSuffix(shop, myshopifySuffix) {
		return false
	}
	name := strings.TrimSuffix(shop, myshopifySuffix)
	if name == "" || strings.HasPrefix(name, "-") || strings.HasPrefix(name, ".") {
		return false
	}
	for _, r := range name {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '.') {
			return false
		}
	}
	return true
}
