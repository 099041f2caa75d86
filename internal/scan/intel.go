package scan

// Intel carries the service's per-provider lookups for a scanned URL. Each
// block is independent; a provider failure fills that block's Error and
// leaves the rest intact.
type Intel struct {
	Whois      *WhoisInfo      `json:"whois,omitempty"`
	SSL        *SSLInfo        `json:"ssl,omitempty"`
	DNSGeo     *DNSGeoInfo     `json:"dns_geo,omitempty"`
	Unshorten  *UnshortenInfo  `json:"unshorten,omitempty"`
	Screenshot *ScreenshotInfo `json:"screenshot,omitempty"`
}

type WhoisInfo struct {
	Available      bool     `json:"available"`
	DomainName     string   `json:"domain_name,omitempty"`
	Registrar      string   `json:"registrar,omitempty"`
	CreationDate   string   `json:"creation_date,omitempty"`
	ExpirationDate string   `json:"expiration_date,omitempty"`
	DomainAgeDays  *int     `json:"domain_age_days,omitempty"`
	NameServers    []string `json:"name_servers,omitempty"`
	Org            string   `json:"org,omitempty"`
	Country        string   `json:"country,omitempty"`
	Error          string   `json:"error,omitempty"`
}

type SSLInfo struct {
	Available    bool   `json:"available"`
	Subject      string `json:"subject,omitempty"`
	Issuer       string `json:"issuer,omitempty"`
	IssuedDate   string `json:"issued_date,omitempty"`
	ExpiryDate   string `json:"expiry_date,omitempty"`
	IsExpired    *bool  `json:"is_expired,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
	Version      int    `json:"version,omitempty"`
	Error        string `json:"error,omitempty"`
}

type DNSGeoInfo struct {
	Available bool   `json:"available"`
	IPAddress string `json:"ip_address,omitempty"`
	Country   string `json:"country,omitempty"`
	Region    string `json:"region,omitempty"`
	City      string `json:"city,omitempty"`
	ISP       string `json:"isp,omitempty"`
	Org       string `json:"org,omitempty"`
	ASN       string `json:"asn,omitempty"`
	Error     string `json:"error,omitempty"`
}

type UnshortenInfo struct {
	IsShortened         bool   `json:"is_shortened"`
	FinalURL            string `json:"final_url,omitempty"`
	RedirectChainLength int    `json:"redirect_chain_length,omitempty"`
	Error               string `json:"error,omitempty"`
}

type ScreenshotInfo struct {
	Available bool   `json:"available"`
	URL       string `json:"url,omitempty"`
	Error     string `json:"error,omitempty"`
}
