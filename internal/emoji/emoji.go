package emoji

// emojiMap holds emoji and ASCII fallback mappings
var emojiMap = map[string][2]string{
	// [emoji, fallback]
	"error":    {"❌", "[ERR]"},
	"warning":  {"⚠️", "[WRN]"},
	"info":     {"ℹ️", "[INF]"},
	"success":  {"✅", "[OK]"},
	"match":    {"🔍", "[MATCH]"},
	"known":    {"✅", "[KNOWN]"},
	"new":      {"🆕", "[NEW]"},
	"high":     {"🔴", "[HIGH]"},
	"medium":   {"🟡", "[MED]"},
	"low":      {"🟢", "[LOW]"},
	"playbook": {"📖", "[BOOK]"},
	"pattern":  {"🏷️", "[PAT]"},
	"fix":      {"🔧", "[FIX]"},
	"cause":    {"💡", "[CAUSE]"},
	"symptom":  {"🩺", "[SYM]"},
	"stats":    {"📊", "[STATS]"},
	"helpful":  {"👍", "[+1]"},
	"harmful":  {"👎", "[-1]"},
	"extract":  {"📥", "[EXT]"},
	"index":    {"🗂️", "[IDX]"},
	"prompt":   {"🧠", "[LLM]"},
}

var emojiDisabled bool

// SetEmojiDisabled sets the global emoji disabled state
func SetEmojiDisabled(disabled bool) {
	emojiDisabled = disabled
}

// IsEmojiDisabled returns the current emoji disabled state
func IsEmojiDisabled() bool {
	return emojiDisabled
}

// GetEmoji returns the emoji for a key, or its ASCII fallback when
// emoji output is disabled
func GetEmoji(key string) string {
	if mapping, exists := emojiMap[key]; exists {
		if emojiDisabled {
			return mapping[1] // fallback
		}
		return mapping[0] // emoji
	}
	return "[?]" // unknown key
}
