package profile

// VoiceKey names a voice profile. Backends map keys to concrete voices.
type VoiceKey string

const (
	VoiceDefault              VoiceKey = "default"
	VoiceYoungFemaleEnergetic VoiceKey = "young_female_energetic"
	VoiceYoungMaleCalm        VoiceKey = "young_male_calm"
	VoiceAdultFemaleNarration VoiceKey = "adult_female_narration"
	VoiceAdultMaleFormal      VoiceKey = "adult_male_formal"
	VoiceSeniorFemaleCalm     VoiceKey = "senior_female_calm"
	VoiceSeniorMaleNarration  VoiceKey = "senior_male_narration"
)

// VoiceKeys lists every key SelectVoice can return.
var VoiceKeys = []VoiceKey{
	VoiceDefault,
	VoiceYoungFemaleEnergetic,
	VoiceYoungMaleCalm,
	VoiceAdultFemaleNarration,
	VoiceAdultMaleFormal,
	VoiceSeniorFemaleCalm,
	VoiceSeniorMaleNarration,
}

// SelectVoice picks a voice profile from the listener's age band and
// gender/style preferences, falling back to gender alone and then to
// the default voice.
func SelectVoice(u User) VoiceKey {
	g, s := u.PreferredVoiceGender, u.PreferredVoiceStyle

	if u.Age != nil {
		switch age := *u.Age; {
		case age >= 0 && age <= 12:
			switch {
			case g == GenderFemale && s == StyleEnergetic:
				return VoiceYoungFemaleEnergetic
			case g == GenderMale && s == StyleCalm:
				return VoiceYoungMaleCalm
			default:
				return VoiceYoungFemaleEnergetic
			}

		case age >= 13 && age <= 19:
			switch {
			case g == GenderFemale && s == StyleNarration:
				return VoiceAdultFemaleNarration
			case g == GenderMale && s == StyleFormal:
				return VoiceAdultMaleFormal
			}

		case age >= 20 && age <= 60:
			switch {
			case g == GenderFemale && s == StyleNarration:
				return VoiceAdultFemaleNarration
			case g == GenderMale && s == StyleFormal:
				return VoiceAdultMaleFormal
			case g == GenderFemale:
				return VoiceAdultFemaleNarration
			case g == GenderMale:
				return VoiceAdultMaleFormal
			}

		case age > 60:
			switch {
			case g == GenderFemale && s == StyleCalm:
				return VoiceSeniorFemaleCalm
			case g == GenderMale && s == StyleNarration:
				return VoiceSeniorMaleNarration
			}
		}
	}

	switch g {
	case GenderFemale:
		return VoiceAdultFemaleNarration
	case GenderMale:
		return VoiceAdultMaleFormal
	}
	return VoiceDefault
}
