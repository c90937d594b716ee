package persona

// Scenario is a selectable lesson context. Its prompt replaces the effective
// system instruction for completions issued after selection; it never rewrites
// past messages.
type Scenario struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	PromptOverride string `json:"-"`
}

// Persona captures a tutor's identity as exposed to the frontend. Loaded once
// at startup and read-only for the lifetime of every session bound to it.
type Persona struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	AvatarRef    string     `json:"avatar"`
	Description  string     `json:"description,omitempty"`
	SystemPrompt string     `json:"-"`
	VoiceID      string     `json:"-"`
	Scenarios    []Scenario `json:"scenarios,omitempty"`
}

// Greeting is the opening tutor message shown when a session starts.
func (p Persona) Greeting() string {
	return "Hello! I'm " + p.Name + ", your " + p.Role + ". How can I help you today?"
}

// FindScenario looks up one of the persona's scenarios by identifier.
func (p Persona) FindScenario(id string) (Scenario, bool) {
	for _, sc := range p.Scenarios {
		if sc.ID == id {
			return sc, true
		}
	}
	return Scenario{}, false
}

// Seed provides the default tutor roster.
func Seed() []Persona {
	return []Persona{
		{
			ID:           "john",
			Name:         "John",
			Role:         "English Tutor",
			AvatarRef:    "/assets/characters/english.png",
			Description:  "English teacher from London",
			SystemPrompt: "You are John, an English tutor. You help students practice English conversation. Keep your responses concise and engaging.",
			VoiceID:      "onwK4e9ZLuTAKqWW03F9",
			Scenarios: []Scenario{
				{
					ID:             "casual",
					Title:          "Casual Conversation",
					Description:    "Practice everyday English in a relaxed setting",
					PromptOverride: "You are having a casual conversation with your student. Keep the tone friendly and natural. Focus on common expressions and everyday vocabulary.",
				},
				{
					ID:             "business",
					Title:          "Business English",
					Description:    "Learn professional communication skills",
					PromptOverride: "You are conducting a business English session. Focus on professional vocabulary, formal expressions, and business scenarios.",
				},
				{
					ID:             "travel",
					Title:          "Travel English",
					Description:    "Prepare for your next trip abroad",
					PromptOverride: "You are helping the student prepare for travel. Focus on travel-related vocabulary, directions, and common tourist situations.",
				},
			},
		},
		{
			ID:           "marco",
			Name:         "Marco",
			Role:         "Italian Tutor",
			AvatarRef:    "/assets/characters/italian.png",
			Description:  "Italian coach from Rome",
			SystemPrompt: "You are Marco, an Italian tutor. You help students practice Italian conversation. Keep your responses concise and engaging.",
			VoiceID:      "S7L0uJpUCUDUktI3y5cw",
			Scenarios: []Scenario{
				{
					ID:             "casual",
					Title:          "Conversazione Informale",
					Description:    "Practice everyday Italian in a relaxed setting",
					PromptOverride: "You are having a casual conversation with your student. Keep the tone friendly and natural. Focus on common expressions and everyday vocabulary.",
				},
				{
					ID:             "food",
					Title:          "Cucina Italiana",
					Description:    "Learn about Italian food and cooking",
					PromptOverride: "You are discussing Italian cuisine and cooking. Focus on food-related vocabulary, recipes, and cultural aspects of Italian food.",
				},
				{
					ID:             "travel",
					Title:          "Viaggi in Italia",
					Description:    "Prepare for your trip to Italy",
					PromptOverride: "You are helping the student prepare for travel in Italy. Focus on travel-related vocabulary, directions, and common tourist situations.",
				},
			},
		},
		{
			ID:           "maria",
			Name:         "Maria",
			Role:         "Spanish Tutor",
			AvatarRef:    "/assets/characters/spanish.png",
			Description:  "Spanish mentor from Madrid",
			SystemPrompt: "You are Maria, a Spanish tutor. You help students practice Spanish conversation. Keep your responses concise and engaging.",
			VoiceID:      "2fzSNSOmb5nntInhUtfm",
			Scenarios: []Scenario{
				{
					ID:             "casual",
					Title:          "Conversación Casual",
					Description:    "Practice everyday Spanish in a relaxed setting",
					PromptOverride: "You are having a casual conversation with your student. Keep the tone friendly and natural. Focus on common expressions and everyday vocabulary.",
				},
				{
					ID:             "food",
					Title:          "Cocina Española",
					Description:    "Learn about Spanish cuisine and culture",
					PromptOverride: "You are discussing Spanish cuisine and cooking. Focus on food-related vocabulary, traditional dishes, and cultural aspects of Spanish food.",
				},
				{
					ID:             "travel",
					Title:          "Viajes por España",
					Description:    "Prepare for your trip to Spain",
					PromptOverride: "You are helping the student prepare for travel in Spain. Focus on travel-related vocabulary, directions, and common tourist situations.",
				},
			},
		},
		{
			ID:           "anna",
			Name:         "Anna",
			Role:         "German Tutor",
			AvatarRef:    "/assets/characters/german.png",
			Description:  "German teacher from Berlin",
			SystemPrompt: "You are Anna, a German tutor. You help students practice German conversation. Keep your responses concise and engaging.",
			VoiceID:      "iOLZqmXTaFktMrY5oZ2z",
			Scenarios: []Scenario{
				{
					ID:             "casual",
					Title:          "Lockere Unterhaltung",
					Description:    "Practice everyday German in a relaxed setting",
					PromptOverride: "You are having a casual conversation with your student. Keep the tone friendly and natural. Focus on common expressions and everyday vocabulary.",
				},
				{
					ID:             "business",
					Title:          "Business-Deutsch",
					Description:    "Learn professional communication skills",
					PromptOverride: "You are conducting a business German session. Focus on professional vocabulary, formal expressions, and business scenarios.",
				},
				{
					ID:             "travel",
					Title:          "Reisen in Deutschland",
					Description:    "Prepare for your trip to Germany",
					PromptOverride: "You are helping the student prepare for travel in Germany. Focus on travel-related vocabulary, directions, and common tourist situations.",
				},
			},
		},
	}
}
