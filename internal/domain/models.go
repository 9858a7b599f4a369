package domain

import "time"

// ResultStub is one row of a search result listing.
type ResultStub struct {
	DetailURL        string `json:"detail_url"`
	Title            string `json:"title"`
	PublishedDate    string `json:"published_date"`
	Address          string `json:"address"`
	CategoryText     string `json:"category_text"`
	ShortDescription string `json:"short_description"`
}

// PublishedSource tells where DetailRecord.PublishedDate came from.
type PublishedSource string

const (
	PublishedFromListing      PublishedSource = "listing"
	PublishedFromAnnouncement PublishedSource = "announcement"
	PublishedFromLastModified PublishedSource = "last_modified"
)

// DetailRecord is a ResultStub widened with the fields of the notice's
// detail page. Fields that could not be found are empty.
type DetailRecord struct {
	ResultStub

	CaseNumber       string          `json:"case_number"`
	Court            string          `json:"court"`
	LastModifiedDate string          `json:"last_modified_date"`
	PublishedSource  PublishedSource `json:"published_source,omitempty"`
	AuctionDate      string          `json:"auction_date"`
	FullAddress      string          `json:"full_address"`
	Categories       string          `json:"categories"`
	MinimumBid       string          `json:"minimum_bid"`
	AppraisedValue   string          `json:"appraised_value"`
	ObjectSize       string          `json:"object_size"`
	Description      string          `json:"description"`
}

// FromStub returns the record a stub stands for before enrichment.
func FromStub(s ResultStub) DetailRecord {
	r := DetailRecord{ResultStub: s}
	if s.PublishedDate != "" {
		r.PublishedSource = PublishedFromListing
	}
	return r
}

// Merge widens base with detail. A non-empty field of detail replaces the
// value in base; an empty one leaves base untouched.
func Merge(base, detail DetailRecord) DetailRecord {
	out := base
	pick := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	pick(&out.DetailURL, detail.DetailURL)
	pick(&out.Title, detail.Title)
	pick(&out.Address, detail.Address)
	pick(&out.CategoryText, detail.CategoryText)
	pick(&out.ShortDescription, detail.ShortDescription)
	if detail.PublishedDate != "" {
		out.PublishedDate = detail.PublishedDate
		out.PublishedSource = detail.PublishedSource
	}

	pick(&out.CaseNumber, detail.CaseNumber)
	pick(&out.Court, detail.Court)
	pick(&out.LastModifiedDate, detail.LastModifiedDate)
	pick(&out.AuctionDate, detail.AuctionDate)
	pick(&out.FullAddress, detail.FullAddress)
	pick(&out.Categories, detail.Categories)
	pick(&out.MinimumBid, detail.MinimumBid)
	pick(&out.AppraisedValue, detail.AppraisedValue)
	pick(&out.ObjectSize, detail.ObjectSize)
	pick(&out.Description, detail.Description)
	return out
}

// DisplayAddress prefers the detail page address over the listing one.
func (r DetailRecord) DisplayAddress() string {
	if r.FullAddress != "" {
		return r.FullAddress
	}
	return r.Address
}

// Status is the per-record outcome of the last pipeline step.
type Status string

const (
	StatusScraped        Status = "scraped"
	StatusFetchFailed    Status = "fetch_failed"
	StatusDownloaded     Status = "downloaded"
	StatusNoAttachment   Status = "no_attachment"
	StatusDownloadFailed Status = "download_failed"
)

// Record is a stored DetailRecord with its durable identity.
type Record struct {
	ID string `json:"id"`
	DetailRecord
	Status         Status    `json:"status"`
	PDFPath        string    `json:"pdf_path,omitempty"`
	PDFTextPreview string    `json:"pdf_text_preview,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
