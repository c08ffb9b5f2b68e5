// Package provider identifies which known mail provider operates a
// given email address and supplies per-provider connection defaults
// and folder-name hints. The registry is a static table; detection
// combines registered domain suffixes with DNS MX/NS observations.
package provider

import "github.com/mailme/mailme/internal/folder"

// Unknown is the sentinel provider name returned when detection fails.
const Unknown = "unknown"

// Endpoint is a host/port pair for a provider service.
type Endpoint struct {
	Host string
	Port int
}

// Profile describes one known mail provider.
type Profile struct {
	Name string
	Type string

	IMAP Endpoint
	SMTP Endpoint

	// Auth is the authentication mechanism the provider expects
	// ("password" or "oauth2").
	Auth string

	// CondStore marks providers known to support CONDSTORE.
	CondStore bool

	// Domains are email-domain suffixes operated by the provider;
	// suffix membership is the strongest detection signal.
	Domains []string

	// MXServers are glob-style patterns matched against the hostnames
	// in a domain's MX records ("." literal, "*" expands to ".*",
	// anchored at both ends).
	MXServers []string

	// NSServers are fully-qualified nameserver hostnames (trailing
	// dot included) compared case-folded against NS records.
	NSServers []string

	// FolderMap maps provider-specific folder names to canonical
	// roles, consulted by the folder classifier after the default
	// name table.
	FolderMap map[string]folder.Role
}

// profiles is the registry in a fixed evaluation order; detection
// priority within a rule is the order entries appear here.
var profiles = []Profile{
	{
		Name:      "aol",
		Type:      "generic",
		IMAP:      Endpoint{"imap.aol.com", 993},
		SMTP:      Endpoint{"smtp.aol.com", 587},
		Auth:      "password",
		Domains:   []string{"aol.com"},
		MXServers: []string{"mailin-0[1-4].mx.aol.com"},
	},
	{
		Name:    "bluehost",
		Type:    "generic",
		Auth:    "password",
		Domains: []string{"autobizbrokers.com"},
	},
	{
		Name: "eas",
		Auth: "password",
		Domains: []string{
			"onmicrosoft.com",
			"exchange.mit.edu",
			"savills-studley.com",
			"clearpoolgroup.com",
			"stsci.edu",
			"kms-technology.com",
			"cigital.com",
		},
		MXServers: []string{
			// Office365
			"*.mail.protection.outlook.com", "*.mail.eo.outlook.com",
		},
	},
	{
		Name: "outlook",
		Auth: "password",
		Domains: []string{
			"outlook.com", "outlook.com.ar",
			"outlook.com.au", "outlook.at", "outlook.be",
			"outlook.com.br", "outlook.cl", "outlook.cz", "outlook.dk",
			"outlook.fr", "outlook.de", "outlook.com.gr",
			"outlook.co.il", "outlook.in", "outlook.co.id",
			"outlook.ie", "outlook.it", "outlook.hu", "outlook.jp",
			"outlook.kr", "outlook.lv", "outlook.my", "outlook.co.nz",
			"outlook.com.pe", "outlook.ph", "outlook.pt", "outlook.sa",
			"outlook.sg", "outlook.sk", "outlook.es", "outlook.co.th",
			"outlook.com.tr", "outlook.com.vn", "live.com", "live.com.ar",
			"live.com.au", "live.at", "live.be", "live.cl", "live.cz",
			"live.dk", "live.fr", "live.de", "live.com.gr", "live.co.il",
			"live.in", "live.ie", "live.it", "live.hu", "live.jp", "live.lv",
			"live.co.nz", "live.com.pe", "live.ph", "live.pt", "live.sa",
			"live.sg", "live.sk", "live.es", "live.co.th", "live.com.tr",
			"live.com.vn", "live.ca", "hotmail.ca",
			"hotmail.com", "hotmail.com.ar", "hotmail.com.au",
			"hotmail.at", "hotmail.be", "hotmail.com.br", "hotmail.cl",
			"hotmail.cz", "hotmail.dk", "hotmail.fr", "hotmail.de",
			"hotmail.co.il", "hotmail.in", "hotmail.ie", "hotmail.it",
			"hotmail.hu", "hotmail.jp", "hotmail.kr", "hotmail.com.pe",
			"hotmail.pt", "hotmail.sa", "hotmail.es", "hotmail.co.th",
			"hotmail.com.tr",
		},
		MXServers: []string{
			"*.pamx1.hotmail.com", "mx.*.hotmail.com",
		},
	},
	{
		// IMAP-based Outlook. Legacy-only.
		Name: "_outlook",
		Type: "generic",
		IMAP: Endpoint{"imap-mail.outlook.com", 993},
		SMTP: Endpoint{"smtp.live.com", 587},
		Auth: "oauth2",
	},
	{
		Name:      "fastmail",
		Type:      "generic",
		CondStore: true,
		IMAP:      Endpoint{"mail.messagingengine.com", 993},
		SMTP:      Endpoint{"mail.messagingengine.com", 587},
		Auth:      "password",
		FolderMap: map[string]folder.Role{
			"INBOX.Archive":    folder.RoleArchive,
			"INBOX.Drafts":     folder.RoleDrafts,
			"INBOX.Junk Mail":  folder.RoleSpam,
			"INBOX.Spam":       folder.RoleSpam,
			"INBOX.Sent":       folder.RoleSent,
			"INBOX.Sent Items": folder.RoleSent,
			"INBOX.Trash":      folder.RoleTrash,
		},
		Domains:   []string{"fastmail.fm"},
		MXServers: []string{"in[12]-smtp.messagingengine.com"},
		NSServers: []string{
			"ns1.messagingengine.com.",
			"ns2.messagingengine.com.",
		},
	},
	{
		Name:      "gandi",
		Type:      "generic",
		CondStore: true,
		IMAP:      Endpoint{"mail.gandi.net", 993},
		SMTP:      Endpoint{"mail.gandi.net", 587},
		Auth:      "password",
		Domains:   []string{"debuggers.co"},
		MXServers: []string{"(spool|fb).mail.gandi.net", "mail[45].gandi.net"},
	},
	{
		Name:    "gmx",
		Type:    "generic",
		IMAP:    Endpoint{"imap.gmx.com", 993},
		SMTP:    Endpoint{"smtp.gmx.com", 587},
		Auth:    "password",
		Domains: []string{"gmx.us", "gmx.com"},
	},
	{
		Name:      "hover",
		Type:      "generic",
		IMAP:      Endpoint{"mail.hover.com", 993},
		SMTP:      Endpoint{"mail.hover.com", 587},
		Auth:      "password",
		MXServers: []string{"mx.hover.com.cust.hostedemail.com"},
	},
	{
		Name: "icloud",
		Type: "generic",
		IMAP: Endpoint{"imap.mail.me.com", 993},
		SMTP: Endpoint{"smtp.mail.me.com", 587},
		Auth: "password",
		FolderMap: map[string]folder.Role{
			"Sent Messages":    folder.RoleSent,
			"Deleted Messages": folder.RoleTrash,
		},
		Domains:   []string{"icloud.com"},
		MXServers: []string{"mx[1-6].mail.icloud.com"},
	},
	{
		Name:      "soverin",
		Type:      "generic",
		IMAP:      Endpoint{"imap.soverin.net", 993},
		SMTP:      Endpoint{"smtp.soverin.net", 587},
		Auth:      "password",
		Domains:   []string{"soverin.net"},
		MXServers: []string{"mx.soverin.net"},
	},
	{
		Name:      "mail.ru",
		Type:      "generic",
		IMAP:      Endpoint{"imap.mail.ru", 993},
		SMTP:      Endpoint{"smtp.mail.ru", 587},
		Auth:      "password",
		Domains:   []string{"mail.ru"},
		MXServers: []string{"mxs.mail.ru"},
	},
	{
		Name:      "namecheap",
		Type:      "generic",
		IMAP:      Endpoint{"mail.privateemail.com", 993},
		SMTP:      Endpoint{"mail.privateemail.com", 587},
		Auth:      "password",
		MXServers: []string{"mx[12].privateemail.com"},
	},
	{
		Name: "yahoo",
		Type: "generic",
		IMAP: Endpoint{"imap.mail.yahoo.com", 993},
		SMTP: Endpoint{"smtp.mail.yahoo.com", 587},
		Auth: "password",
		FolderMap: map[string]folder.Role{
			"Bulk Mail": folder.RoleSpam,
		},
		Domains: []string{
			"yahoo.com.ar", "yahoo.com.au", "yahoo.at", "yahoo.be",
			"yahoo.fr", "yahoo.nl", "yahoo.com.br",
			"yahoo.ca", "yahoo.en",
			"yahoo.com.cn", "yahoo.cn", "yahoo.com.co", "yahoo.cz",
			"yahoo.dk", "yahoo.fi", "yahoo.de", "yahoo.gr",
			"yahoo.com.hk", "yahoo.hu", "yahoo.co.in", "yahoo.in",
			"yahoo.ie", "yahoo.co.il", "yahoo.it", "yahoo.co.jp",
			"yahoo.com.my", "yahoo.com.mx", "yahoo.ae",
			"yahoo.co.nz", "yahoo.no", "yahoo.com.ph", "yahoo.pl",
			"yahoo.pt", "yahoo.ro", "yahoo.ru", "yahoo.com.sg",
			"yahoo.co.za", "yahoo.es", "yahoo.se", "yahoo.ch",
			"yahoo.com.tw",
			"yahoo.co.th", "yahoo.com.tr", "yahoo.co.uk", "yahoo.com",
			"yahoo.com.vn", "ymail.com", "rocketmail.com",
		},
		MXServers: []string{
			"mx-biz.mail.am0.yahoodns.net",
			"mx[15].biz.mail.yahoo.com",
			"mxvm2.mail.yahoo.com", "mx-van.mail.am0.yahoodns.net",
		},
	},
	{
		Name:      "yandex",
		Type:      "generic",
		IMAP:      Endpoint{"imap.yandex.com", 993},
		SMTP:      Endpoint{"smtp.yandex.com", 587},
		Auth:      "password",
		MXServers: []string{"mx.yandex.ru"},
	},
	{
		Name:      "zimbra",
		Type:      "generic",
		IMAP:      Endpoint{"mail.you-got-mail.com", 993},
		SMTP:      Endpoint{"smtp.you-got-mail.com", 587},
		Auth:      "password",
		Domains:   []string{"mrmail.com"},
		MXServers: []string{"mx.mrmail.com"},
	},
	{
		Name: "godaddy",
		Type: "generic",
		IMAP: Endpoint{"imap.secureserver.net", 993},
		SMTP: Endpoint{"smtpout.secureserver.net", 465},
		Auth: "password",
		MXServers: []string{
			"smtp.secureserver.net",
			"mailstore1.(asia.|europe.)?secureserver.net",
		},
	},
	{
		Name:      "163",
		Type:      "generic",
		IMAP:      Endpoint{"imap.163.com", 993},
		SMTP:      Endpoint{"smtp.163.com", 465},
		Auth:      "password",
		Domains:   []string{"163.com"},
		MXServers: []string{"163mx0[0-3].mxmail.netease.com"},
	},
	{
		Name:      "163_ym",
		Type:      "generic",
		IMAP:      Endpoint{"imap.ym.163.com", 993},
		SMTP:      Endpoint{"smtp.ym.163.com", 994},
		Auth:      "password",
		MXServers: []string{"mx.ym.163.com"},
	},
	{
		Name:      "163_qiye",
		Type:      "generic",
		IMAP:      Endpoint{"imap.qiye.163.com", 993},
		SMTP:      Endpoint{"smtp.qiye.163.com", 994},
		Auth:      "password",
		MXServers: []string{"qiye163mx0[12].mxmail.netease.com"},
	},
	{
		Name:      "123_reg",
		Type:      "generic",
		IMAP:      Endpoint{"imap.123-reg.co.uk", 993},
		SMTP:      Endpoint{"smtp.123-reg.co.uk", 465},
		Auth:      "password",
		MXServers: []string{"mx[01].123-reg.co.uk"},
	},
	{
		Name:      "126",
		Type:      "generic",
		IMAP:      Endpoint{"imap.126.com", 993},
		SMTP:      Endpoint{"smtp.126.com", 465},
		Auth:      "password",
		Domains:   []string{"126.com"},
		MXServers: []string{"126mx0[0-2].mxmail.netease.com"},
	},
	{
		Name:      "yeah.net",
		Type:      "generic",
		IMAP:      Endpoint{"imap.yeah.net", 993},
		SMTP:      Endpoint{"smtp.yeah.net", 465},
		Auth:      "password",
		Domains:   []string{"yeah.net"},
		MXServers: []string{"yeahmx0[01].mxmail.netease.com"},
	},
	{
		Name:      "qq",
		Type:      "generic",
		IMAP:      Endpoint{"imap.qq.com", 993},
		SMTP:      Endpoint{"smtp.qq.com", 465},
		Auth:      "password",
		Domains:   []string{"qq.com", "vip.qq.com"},
		MXServers: []string{"mx[1-3].qq.com"},
	},
	{
		Name:      "foxmail",
		Type:      "generic",
		IMAP:      Endpoint{"imap.exmail.qq.com", 993},
		SMTP:      Endpoint{"smtp.exmail.qq.com", 465},
		Auth:      "password",
		Domains:   []string{"foxmail.com"},
		MXServers: []string{"mx[1-3].qq.com"},
	},
	{
		Name:      "qq_enterprise",
		Type:      "generic",
		IMAP:      Endpoint{"imap.exmail.qq.com", 993},
		SMTP:      Endpoint{"smtp.exmail.qq.com", 465},
		Auth:      "password",
		MXServers: []string{"mxbiz[12].qq.com"},
	},
	{
		Name:      "aliyun",
		Type:      "generic",
		IMAP:      Endpoint{"imap.aliyun.com", 993},
		SMTP:      Endpoint{"smtp.aliyun.com", 465},
		Auth:      "password",
		Domains:   []string{"aliyun"},
		MXServers: []string{"mx2.mail.aliyun.com"},
	},
	{
		Name:      "139",
		Type:      "generic",
		IMAP:      Endpoint{"imap.139.com", 993},
		SMTP:      Endpoint{"smtp.139.com", 465},
		Auth:      "password",
		Domains:   []string{"139.com"},
		MXServers: []string{"mx[1-3].mail.139.com"},
	},
	{
		Name: "gmail",
		IMAP: Endpoint{"imap.gmail.com", 993},
		SMTP: Endpoint{"smtp.gmail.com", 587},
		Auth: "oauth2",
		MXServers: []string{
			"aspmx.l.google.com",
			"aspmx[2-6].googlemail.com",
			"(alt|aspmx)[1-4].aspmx.l.google.com",
			"gmail-smtp-in.l.google.com",
			"alt[1-4].gmail-smtp-in.l.google.com",
			// Postini
			"*.psmtp.com",
		},
	},
	{
		Name: "custom",
		Type: "generic",
		Auth: "password",
		FolderMap: map[string]folder.Role{
			"INBOX.Archive":    folder.RoleArchive,
			"INBOX.Drafts":     folder.RoleDrafts,
			"INBOX.Junk Mail":  folder.RoleSpam,
			"INBOX.Trash":      folder.RoleTrash,
			"INBOX.Sent Items": folder.RoleSent,
			"INBOX.Sent":       folder.RoleSent,
		},
	},
}

// byName indexes the registry for direct lookups.
var byName = func() map[string]Profile {
	m := make(map[string]Profile, len(profiles))
	for _, p := range profiles {
		m[p.Name] = p
	}
	return m
}()

// Get returns the profile registered under name.
func Get(name string) (Profile, bool) {
	p, ok := byName[name]
	return p, ok
}

// Names returns all registered provider names in evaluation order.
func Names() []string {
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.Name
	}
	return names
}
