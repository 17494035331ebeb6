package util

import (
	"net/http"
	"net/url"
	"strings"
)

// NewProxyFunc builds the transport's proxy selector. With no explicit proxy
// configured the standard environment variables (HTTP_PROXY, HTTPS_PROXY,
// NO_PROXY) apply. Explicit proxies are picked by request scheme, and hosts
// matching a no_proxy entry (exact or dot-suffix) connect directly.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	var bypass []string
	for _, entry := range strings.Split(noProxy, ",") {
		if e := strings.TrimSpace(entry); e != "" {
			bypass = append(bypass, strings.TrimPrefix(e, "."))
		}
	}

	return func(req *http.Request) (*url.URL, error) {
		host := req.URL.Hostname()
		for _, suffix := range bypass {
			if host == suffix || strings.HasSuffix(host, "."+suffix) {
				return nil, nil
			}
		}

		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}
