package user

// Partial carries a field-level update. Nil pointers mean "leave the
// current value alone", which lets callers update a single field without
// erasing its siblings.
type Partial struct {
	Name          *string            `json:"name,omitempty"`
	Email         *string            `json:"email,omitempty"`
	Password      *string            `json:"password,omitempty"`
	BusinessName  *string            `json:"businessName,omitempty"`
	BusinessInfo  *BusinessInfoPatch `json:"businessInfo,omitempty"`
	BrandData     *BrandDataPatch    `json:"brandData,omitempty"`
	SetupComplete *bool              `json:"setupComplete,omitempty"`
}

// BusinessInfoPatch updates individual business info fields.
type BusinessInfoPatch struct {
	Industry    *string `json:"industry,omitempty"`
	SubIndustry *string `json:"subIndustry,omitempty"`
	Description *string `json:"description,omitempty"`
	Website     *string `json:"website,omitempty"`
}

// BrandDataPatch updates individual brand identity fields. BrandColors
// replaces the whole ordered sequence when non-nil.
type BrandDataPatch struct {
	BrandColors    []string `json:"brandColors,omitempty"`
	BrandVoice     *string  `json:"brandVoice,omitempty"`
	TargetAudience *string  `json:"targetAudience,omitempty"`
	Logo           *string  `json:"logo,omitempty"`
}

// IsZero reports whether the partial carries no update at all.
func (p Partial) IsZero() bool {
	return p.Name == nil && p.Email == nil && p.Password == nil &&
		p.BusinessName == nil && p.BusinessInfo == nil && p.BrandData == nil &&
		p.SetupComplete == nil
}

// Merge applies the partial to a copy of the user and returns it.
//
// The merge is exactly one level deep: top-level fields are replaced,
// while BusinessInfo and BrandData are merged key-by-key so that setting
// Industry does not erase a previously stored Description. It is not
// fully recursive and must not become so.
//
// SetupComplete is monotonic: a partial can raise it to true but a false
// value is ignored once the flag is set.
func Merge(current User, p Partial) User {
	out := current.Clone()

	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Email != nil {
		out.Email = *p.Email
	}
	if p.Password != nil {
		out.Password = *p.Password
	}
	if p.BusinessName != nil {
		out.BusinessName = *p.BusinessName
	}
	if p.BusinessInfo != nil {
		info := BusinessInfo{}
		if out.BusinessInfo != nil {
			info = *out.BusinessInfo
		}
		if p.BusinessInfo.Industry != nil {
			info.Industry = *p.BusinessInfo.Industry
		}
		if p.BusinessInfo.SubIndustry != nil {
			info.SubIndustry = *p.BusinessInfo.SubIndustry
		}
		if p.BusinessInfo.Description != nil {
			info.Description = *p.BusinessInfo.Description
		}
		if p.BusinessInfo.Website != nil {
			info.Website = *p.BusinessInfo.Website
		}
		out.BusinessInfo = &info
	}
	if p.BrandData != nil {
		brand := BrandData{}
		if out.BrandData != nil {
			brand = *out.BrandData
			brand.BrandColors = append([]string(nil), brand.BrandColors...)
		}
		if p.BrandData.BrandColors != nil {
			brand.BrandColors = append([]string(nil), p.BrandData.BrandColors...)
		}
		if p.BrandData.BrandVoice != nil {
			brand.BrandVoice = *p.BrandData.BrandVoice
		}
		if p.BrandData.TargetAudience != nil {
			brand.TargetAudience = *p.BrandData.TargetAudience
		}
		if p.BrandData.Logo != nil {
			brand.Logo = *p.BrandData.Logo
		}
		out.BrandData = &brand
	}
	if p.SetupComplete != nil && *p.SetupComplete {
		out.SetupComplete = true
	}

	return out
}

// Ptr returns a pointer to the given value, for building partials inline.
func Ptr[T any](v T) *T {
	return &v
}
