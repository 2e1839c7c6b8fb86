package profile

// Component is one weighted item of the completion score.
type Component struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Weight   int    `json:"weight"`
	Complete bool   `json:"complete"`
}

type Completion struct {
	Percentage int         `json:"percentage"`
	Components []Component `json:"components"`
	Missing    []string    `json:"missing"`
}

type rule struct {
	key    string
	label  string
	weight int
	check  func(p Profile, c SectionCounts) bool
}

// Weights sum to 100.
var rules = []rule{
	{"personal_name", "First and last name", 10, func(p Profile, _ SectionCounts) bool {
		return p.Personal.FirstName != "" && p.Personal.LastName != ""
	}},
	{"job_title", "Job title", 5, func(p Profile, _ SectionCounts) bool { return p.Personal.JobTitle != "" }},
	{"contact", "Email or phone", 10, func(p Profile, _ SectionCounts) bool {
		return p.Personal.Email != "" || p.Personal.Phone != ""
	}},
	{"summary", "Professional summary", 10, func(p Profile, _ SectionCounts) bool { return p.Personal.Summary != "" }},
	{"experience", "Work experience", 20, func(_ Profile, c SectionCounts) bool { return c.Experience > 0 }},
	{"education", "Education", 15, func(_ Profile, c SectionCounts) bool { return c.Education > 0 }},
	{"skills", "Skills", 10, func(_ Profile, c SectionCounts) bool { return c.Skills > 0 }},
	{"languages", "Languages", 10, func(_ Profile, c SectionCounts) bool { return c.Languages > 0 }},
	{"certifications", "Certifications", 5, func(_ Profile, c SectionCounts) bool { return c.Certifications > 0 }},
	{"social_networks", "Social networks", 5, func(_ Profile, c SectionCounts) bool { return c.SocialNetworks > 0 }},
}

func ComputeCompletion(p Profile, counts SectionCounts) Completion {
	out := Completion{
		Components: make([]Component, 0, len(rules)),
		Missing:    make([]string, 0),
	}
	for _, r := range rules {
		ok := r.check(p, counts)
		out.Components = append(out.Components, Component{Key: r.key, Label: r.label, Weight: r.weight, Complete: ok})
		if ok {
			out.Percentage += r.weight
		} else {
			out.Missing = append(out.Missing, r.key)
		}
	}
	if out.Percentage > 100 {
		out.Percentage = 100
	}
	return out
}
