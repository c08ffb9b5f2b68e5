package provider

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/rs/zerolog"
)

// ErrBadAddress is returned for inputs that are not email addresses.
var ErrBadAddress = errors.New("malformed email address")

// googleDNS is the fixed public nameserver all lookups go through.
const googleDNS = "8.8.8.8:53"

const queryTimeout = 5 * time.Second

// Resolver classifies email addresses by provider using DNS MX/NS
// observations. DNS failures are never fatal: lookups degrade to
// empty record sets and resolution falls through to Unknown.
type Resolver struct {
	server string
	client *dns.Client
	log    zerolog.Logger

	// lookup hooks, replaceable in tests
	lookupMX func(domain string) []string
	lookupNS func(domain string) []string
}

// NewResolver returns a resolver pinned at Google's public DNS.
func NewResolver(log zerolog.Logger) *Resolver {
	r := &Resolver{
		server: googleDNS,
		client: &dns.Client{Timeout: queryTimeout},
		log:    log.With().Str("component", "provider-resolver").Logger(),
	}
	r.lookupMX = r.mxDomains
	r.lookupNS = r.nsDomains
	return r
}

// ResolveAddress determines which known provider operates the given
// email address. Match priority: registered domain suffix, then MX
// pattern, then NS hostname. Unknown is returned when nothing
// matches; an error only for malformed input.
func (r *Resolver) ResolveAddress(email string) (string, error) {
	_, domain, found := strings.Cut(email, "@")
	if !found || domain == "" {
		return "", fmt.Errorf("%w: %q", ErrBadAddress, email)
	}
	domain = strings.ToLower(domain)

	mxDomains := r.lookupMX(domain)
	nsDomains := r.lookupNS(domain)

	for _, p := range profiles {
		for _, d := range p.Domains {
			if strings.HasSuffix(domain, d) {
				return p.Name, nil
			}
		}
	}

	for _, p := range profiles {
		if mxMatch(mxDomains, p.MXServers) {
			return p.Name, nil
		}
	}

	for _, p := range profiles {
		for _, ns := range nsDomains {
			for _, registered := range p.NSServers {
				if ns == registered {
					return p.Name, nil
				}
			}
		}
	}

	return Unknown, nil
}

// mxMatch reports whether any observed MX hostname matches any of the
// provider's glob-style patterns. Dots match literally, "*" expands
// to ".*", and the pattern is anchored at both ends. Trailing dots on
// server names are stripped first, since MX answers may carry either
// relative or absolute names.
func mxMatch(mxDomains, patterns []string) bool {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		conv := strings.ReplaceAll(p, ".", "[.]")
		conv = strings.ReplaceAll(conv, "*", ".*")
		re, err := regexp.Compile("^" + conv + "$")
		if err != nil {
			continue
		}
		res = append(res, re)
	}

	for _, mx := range mxDomains {
		mx = strings.TrimSuffix(mx, ".")
		for _, re := range res {
			if re.MatchString(mx) {
				return true
			}
		}
	}
	return false
}

// mxDomains retrieves the MX hostnames for a domain, case-folded.
// When the resolver answers successfully but with an empty answer
// section, a raw UDP query is retried once before giving up.
func (r *Resolver) mxDomains(domain string) []string {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), dns.TypeMX)

	resp, _, err := r.client.Exchange(msg, r.server)
	if err != nil {
		r.log.Warn().Err(err).Str("domain", domain).Msg("MX lookup failed")
		return nil
	}

	switch resp.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		r.log.Warn().Str("domain", domain).Msg("no such domain")
		return nil
	default:
		r.log.Warn().Str("domain", domain).
			Str("rcode", dns.RcodeToString[resp.Rcode]).
			Msg("MX lookup refused")
		return nil
	}

	if len(resp.Answer) == 0 {
		// Some resolvers return an empty answer where a direct query
		// succeeds; retry once over a raw UDP exchange.
		r.log.Debug().Str("domain", domain).Msg("empty MX answer, retrying over raw UDP")
		resp = r.rawQuery(msg)
		if resp == nil {
			return nil
		}
	}

	return mxHosts(resp.Answer)
}

// nsDomains retrieves the NS hostnames for a domain, case-folded,
// keeping the trailing dot for exact comparison against the registry.
func (r *Resolver) nsDomains(domain string) []string {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), dns.TypeNS)

	resp, _, err := r.client.Exchange(msg, r.server)
	if err != nil {
		r.log.Warn().Err(err).Str("domain", domain).Msg("NS lookup failed")
		return nil
	}
	if resp.Rcode != dns.RcodeSuccess {
		r.log.Warn().Str("domain", domain).
			Str("rcode", dns.RcodeToString[resp.Rcode]).
			Msg("NS lookup refused")
		return nil
	}

	var hosts []string
	for _, rr := range resp.Answer {
		if ns, ok := rr.(*dns.NS); ok {
			hosts = append(hosts, strings.ToLower(ns.Ns))
		}
	}
	return hosts
}

// rawQuery performs a single plain UDP exchange against the pinned
// nameserver, bypassing the configured client.
func (r *Resolver) rawQuery(msg *dns.Msg) *dns.Msg {
	conn, err := dns.DialTimeout("udp", r.server, queryTimeout)
	if err != nil {
		r.log.Warn().Err(err).Msg("raw UDP dial failed")
		return nil
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(queryTimeout))
	if err := conn.WriteMsg(msg); err != nil {
		r.log.Warn().Err(err).Msg("raw UDP query failed")
		return nil
	}
	resp, err := conn.ReadMsg()
	if err != nil {
		r.log.Warn().Err(err).Msg("raw UDP read failed")
		return nil
	}
	return resp
}

func mxHosts(answers []dns.RR) []string {
	var hosts []string
	for _, rr := range answers {
		if mx, ok := rr.(*dns.MX); ok {
			hosts = append(hosts, strings.ToLower(mx.Mx))
		}
	}
	return hosts
}
