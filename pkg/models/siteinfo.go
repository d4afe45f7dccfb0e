package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// SiteInfoID is the fixed _id of the singleton site-info document.
const SiteInfoID = "site-info"

type SocialLinks struct {
	Facebook  string `bson:"facebook,omitempty" json:"facebook,omitempty"`
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
	Twitter   string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	LinkedIn  string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
}

type SiteInfo struct {
	ID           string      `bson:"_id" json:"_id"`
	SiteName     string      `bson:"siteName" json:"siteName"`
	Categories   []string    `bson:"categories" json:"categories"`
	ContactEmail string      `bson:"contactEmail" json:"contactEmail"`
	ContactPhone string      `bson:"contactPhone" json:"contactPhone"`
	Address      string      `bson:"address" json:"address"`
	SocialLinks  SocialLinks `bson:"socialLinks" json:"socialLinks"`
	About        string      `bson:"about" json:"about"`
	CreatedAt    time.Time   `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time   `bson:"updatedAt" json:"updatedAt"`
}

func DefaultSiteInfo(now time.Time) *SiteInfo {
	return &SiteInfo{
		ID:         SiteInfoID,
		SiteName:   "My Site",
		Categories: []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

type SiteInfoPatch struct {
	SiteName     *string      `json:"siteName"`
	Categories   *[]string    `json:"categories"`
	ContactEmail *string      `json:"contactEmail"`
	ContactPhone *string      `json:"contactPhone"`
	Address      *string      `json:"address"`
	SocialLinks  *SocialLinks `json:"socialLinks"`
	About        *string      `json:"about"`
}

// Apply merges the patch into s.
func (p *SiteInfoPatch) Apply(s *SiteInfo) {
	if p.SiteName != nil {
		s.SiteName = *p.SiteName
	}
	if p.Categories != nil {
		s.Categories = NormalizeCategories(*p.Categories)
	}
	if p.ContactEmail != nil {
		s.ContactEmail = *p.ContactEmail
	}
	if p.ContactPhone != nil {
		s.ContactPhone = *p.ContactPhone
	}
	if p.Address != nil {
		s.Address = *p.Address
	}
	if p.SocialLinks != nil {
		s.SocialLinks = *p.SocialLinks
	}
	if p.About != nil {
		s.About = *p.About
	}
}

// SetFields returns the $set document for the patch.
func (p *SiteInfoPatch) SetFields() bson.M {
	set := bson.M{}
	if p.SiteName != nil {
		set["siteName"] = *p.SiteName
	}
	if p.Categories != nil {
		set["categories"] = NormalizeCategories(*p.Categories)
	}
	if p.ContactEmail != nil {
		set["contactEmail"] = *p.ContactEmail
	}
	if p.ContactPhone != nil {
		set["contactPhone"] = *p.ContactPhone
	}
	if p.Address != nil {
		set["address"] = *p.Address
	}
	if p.SocialLinks != nil {
		set["socialLinks"] = *p.SocialLinks
	}
	if p.About != nil {
		set["about"] = *p.About
	}
	return set
}

// NormalizeCategories trims labels, drops empty ones and keeps the first
// occurrence of each.
func NormalizeCategories(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
