package session

import "net/http"

// storedCookie is the persisted form of a backend cookie
type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func toStoredCookies(cookies []*http.Cookie) []storedCookie {
	out := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		if c.MaxAge < 0 || c.Value == "" {
			continue
		}
		out = append(out, storedCookie{Name: c.Name, Value: c.Value})
	}
	return out
}

func fromStoredCookies(stored []storedCookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}
