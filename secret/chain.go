package secret

import "context"

// Link pairs a provider with the key to ask it for.
type Link struct {
	Provider Provider
	Key      string
}

// Chain is an ordered list of lookups. The first present value wins.
type Chain []Link

// Resolve folds the chain left to right and returns the first present value
// along with the name of the provider that supplied it. When no link is
// present it returns ("", "", false).
func (c Chain) Resolve(ctx context.Context) (value string, source string, ok bool) {
	for _, link := range c {
		if link.Provider == nil {
			continue
		}
		if v, found := link.Provider.Lookup(ctx, link.Key); found {
			return v, link.Provider.Name(), true
		}
	}
	return "", "", false
}

// Value is Resolve without the bookkeeping: the first present value or "".
func (c Chain) Value(ctx context.Context) string {
	v, _, _ := c.Resolve(ctx)
	return v
}
