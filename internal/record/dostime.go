package record

import "time"

// DOSTime converts t to the MS-DOS date and time fields used by local and
// central headers. Years clamp to the representable 1980–2107 range and
// seconds round down to two-second resolution.
func DOSTime(t time.Time) (dosDate, dosTime uint16) {
	year := min(max(t.Year()-1980, 0), 127)
	dosDate = uint16(year)<<9 | uint16(t.Month())<<5 | uint16(t.Day())
	dosTime = uint16(t.Hour())<<11 | uint16(t.Minute())<<5 | uint16(t.Second()/2)
	return dosDate, dosTime
}

// TimeFromDOS converts MS-DOS date and time fields back to a time.Time in
// the local location.
func TimeFromDOS(dosDate, dosTime uint16) time.Time {
	return time.Date(
		int(dosDate>>9&0x7f)+1980,
		time.Month(dosDate>>5&0x0f),
		int(dosDate&0x1f),
		int(dosTime>>11),
		int(dosTime>>5&0x3f),
		int(dosTime&0x1f)*2,
		0,
		time.Local,
	)
}
