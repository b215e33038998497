package ledgersdk

import (
	"net/url"
	"strconv"
)

// query collects optional filter parameters. Unset values are skipped.
type query url.Values

func (q query) str(key, v string) {
	if v != "" {
		url.Values(q).Set(key, v)
	}
}

func (q query) id(key string, v *int64) {
	if v != nil {
		url.Values(q).Set(key, strconv.FormatInt(*v, 10))
	}
}

func (q query) boolean(key string, v *bool) {
	if v != nil {
		url.Values(q).Set(key, strconv.FormatBool(*v))
	}
}

func (q query) num(key string, v int) {
	if v > 0 {
		url.Values(q).Set(key, strconv.Itoa(v))
	}
}

func (q query) values() url.Values {
	return url.Values(q)
}
