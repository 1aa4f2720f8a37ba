package alignment

type band struct {
	min     int
	message string
}

var bands = []band{
	{min: 90, message: "You are living in complete alignment with your vows. This is who you are now."},
	{min: 70, message: "Strong alignment. Your actions are becoming your identity."},
	{min: 50, message: "You're building momentum. Keep showing up for the person you're becoming."},
	{min: 30, message: "Every small step counts. Recommit to one vow today."},
	{min: 0, message: "Your journey starts with a single honest step. Begin where you are."},
}

// Message возвращает поддерживающее сообщение для показателя.
func Message(score int) string {
	for _, b := range bands {
		if score >= b.min {
			return b.message
		}
	}
	return bands[len(bands)-1].message
}
