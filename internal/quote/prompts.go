package quote

import "math/rand/v2"

var prompts = []string{
	"“You’re allowed to take up space.”",
	"“Pick one thing. Do it properly.”",
	"“Consistency beats intensity (yes, even at the gym).”",
	"“Small progress counts. Don’t bully yourself.”",
	"“Drink water. Then decide.”",
	"“Do it in 10 minutes. Perfect later.”",
	"“Your future self likes clean schedules.”",
	"“Be kind. Be sharp. Be unstoppable.”",
	"“You don’t need permission to be proud.”",
	"“No overthinking today, just one step.”",
	"“If it’s worth doing, it’s worth doing calmly.”",
}

var missions = []string{
	"Do one small thing with full focus.",
	"Stretch for 3 minutes. Your body will forgive you.",
	"Reply to one message you’ve been postponing.",
	"Clean one tiny area (one drawer counts).",
	"Plan tomorrow’s top 2 tasks. Stop there.",
	"Walk for 8 minutes. No headphones. Just air.",
}

// Prompt is a short encouragement paired with a tiny mission.
type Prompt struct {
	Text    string `json:"text"`
	Mission string `json:"mission"`
}

// Shuffle picks a prompt and a mission independently. A nil pick uses
// math/rand/v2.
func Shuffle(pick func(n int) int) Prompt {
	if pick == nil {
		pick = rand.IntN
	}
	return Prompt{
		Text:    prompts[pick(len(prompts))],
		Mission: missions[pick(len(missions))],
	}
}
