package codec

import "net/url"

// URLEncodedFormEncoder encodes named form parameters as
// application/x-www-form-urlencoded via net/url.Values — identical to
// relay's stdlib default, provided here so codec can be used as a
// complete alternative to relay's internal fallbacks.
type URLEncodedFormEncoder struct{}

func (URLEncodedFormEncoder) Encode(values map[string]string) ([]byte, string, error) {
	form := url.Values{}
	for k, v := range values {
		form.Set(k, v)
	}
	return []byte(form.Encode()), "application/x-www-form-urlencoded", nil
}
