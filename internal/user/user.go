package user

// BusinessInfo holds the optional business profile sub-record. Each field
// is independently settable.
type BusinessInfo struct {
	Industry    string `json:"industry,omitempty"`
	SubIndustry string `json:"subIndustry,omitempty"`
	Description string `json:"description,omitempty"`
	Website     string `json:"website,omitempty"`
}

// BrandData holds the optional brand identity sub-record.
type BrandData struct {
	BrandColors    []string `json:"brandColors,omitempty"`
	BrandVoice     string   `json:"brandVoice,omitempty"`
	TargetAudience string   `json:"targetAudience,omitempty"`
	Logo           string   `json:"logo,omitempty"`
}

// User is the single entity the gateway manages. The serialized form of
// this struct is what the session store persists under its fixed key.
//
// Password is a write-only credential: it is kept only while setup is in
// progress so the terminal setup stage can hand it off to the backend,
// and is cleared once setup completes.
type User struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	Password      string        `json:"password,omitempty"`
	BusinessName  string        `json:"businessName,omitempty"`
	BusinessInfo  *BusinessInfo `json:"businessInfo,omitempty"`
	BrandData     *BrandData    `json:"brandData,omitempty"`
	SetupComplete bool          `json:"setupComplete"`
}

// Clone returns a deep copy safe to hand out as a snapshot.
func (u User) Clone() User {
	out := u
	if u.BusinessInfo != nil {
		info := *u.BusinessInfo
		out.BusinessInfo = &info
	}
	if u.BrandData != nil {
		brand := *u.BrandData
		if u.BrandData.BrandColors != nil {
			brand.BrandColors = append([]string(nil), u.BrandData.BrandColors...)
		}
		out.BrandData = &brand
	}
	return out
}
