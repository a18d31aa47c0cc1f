// Package schema is the single field table of the blackbox I-frame emitted by
// bblconv.
//
// The header writer derives the "Field I name", "Field I signed", predictor
// and encoding lines from Fields, the record encoder picks each field's
// variable-byte scheme from the same entries, and the blackbox reader checks a
// parsed header against it. Adding or reordering a field here changes all three
// consistently.
package schema

import (
	"strconv"
	"strings"

	"github.com/arloliu/bblconv/format"
)

// Field describes one column of the I-frame.
type Field struct {
	// Name is the blackbox field name, e.g. "axisP[0]".
	Name string
	// Signed is the value written to the "Field I signed" header.
	Signed bool
	// IPredictor and PPredictor are the predictors declared for I- and P-frames.
	IPredictor format.Predictor
	PPredictor format.Predictor
	// PEncoding is the declared P-frame encoding. P-frames are never emitted but
	// viewers require the declaration.
	PEncoding format.EncodingKind
}

// IEncoding returns the I-frame encoding of the field: zig-zag variable-byte for
// signed fields, plain variable-byte otherwise.
func (f Field) IEncoding() format.EncodingKind {
	if f.Signed {
		return format.EncodingSignedVB
	}

	return format.EncodingUnsignedVB
}

// Field indexes in I-frame order.
const (
	LoopIteration = iota
	Time
	AxisP0
	AxisP1
	AxisP2
	AxisI0
	AxisI1
	AxisI2
	AxisD0
	AxisD1
	AxisF0
	AxisF1
	AxisF2
	RCCommand0
	RCCommand1
	RCCommand2
	RCCommand3
	Setpoint0
	Setpoint1
	Setpoint2
	Setpoint3
	VbatLatest
	AmperageLatest
	RSSI
	GyroADC0
	GyroADC1
	GyroADC2
	AccSmooth0
	AccSmooth1
	AccSmooth2
	Debug0
	Debug1
	Debug2
	Debug3
	Motor0
	Motor1
	Motor2
	Motor3

	// FieldCount is the number of fields in an I-frame.
	FieldCount
)

// Values holds one record's field values in I-frame order.
type Values [FieldCount]int64

const (
	pPrev = format.PredictorPrevious
	pAvg2 = format.PredictorAverage2
)

// Fields is the I-frame field table.
var Fields = [FieldCount]Field{
	LoopIteration:  {Name: "loopIteration", PPredictor: format.PredictorIncrement, PEncoding: format.EncodingNull},
	Time:           {Name: "time", PPredictor: format.PredictorStraightLine, PEncoding: format.EncodingSignedVB},
	AxisP0:         {Name: "axisP[0]", Signed: true, PPredictor: pPrev},
	AxisP1:         {Name: "axisP[1]", Signed: true, PPredictor: pPrev},
	AxisP2:         {Name: "axisP[2]", Signed: true, PPredictor: pPrev},
	AxisI0:         {Name: "axisI[0]", Signed: true, PPredictor: pPrev, PEncoding: format.EncodingTag2_3S32},
	AxisI1:         {Name: "axisI[1]", Signed: true, PPredictor: pPrev, PEncoding: format.EncodingTag2_3S32},
	AxisI2:         {Name: "axisI[2]", Signed: true, PPredictor: pPrev, PEncoding: format.EncodingTag2_3S32},
	AxisD0:         {Name: "axisD[0]", Signed: true, PPredictor: pPrev},
	AxisD1:         {Name: "axisD[1]", Signed: true, PPredictor: pPrev},
	AxisF0:         {Name: "axisF[0]", Signed: true, PPredictor: pPrev},
	AxisF1:         {Name: "axisF[1]", Signed: true, PPredictor: pPrev},
	AxisF2:         {Name: "axisF[2]", Signed: true, PPredictor: pPrev},
	RCCommand0:     {Name: "rcCommand[0]", Signed: true, PPredictor: pPrev, PEncoding: format.EncodingTag8_4S16},
	RCCommand1:     {Name: "rcCommand[1]", Signed: true, PPredictor: pPrev, PEncoding: format.EncodingTag8_4S16},
	RCCommand2:     {Name: "rcCommand[2]", Signed: true, PPredictor: pPrev, PEncoding: format.EncodingTag8_4S16},
	RCCommand3:     {Name: "rcCommand[3]", PPredictor: pPrev, PEncoding: format.EncodingTag8_4S16},
	Setpoint0:      {Name: "setpoint[0]", Signed: true, PPredictor: pPrev, PEncoding: format.EncodingTag8_4S16},
	Setpoint1:      {Name: "setpoint[1]", Signed: true, PPredictor: pPrev, PEncoding: format.EncodingTag8_4S16},
	Setpoint2:      {Name: "setpoint[2]", Signed: true, PPredictor: pPrev, PEncoding: format.EncodingTag8_4S16},
	Setpoint3:      {Name: "setpoint[3]", Signed: true, PPredictor: pPrev, PEncoding: format.EncodingTag8_4S16},
	VbatLatest:     {Name: "vbatLatest", PPredictor: pPrev, PEncoding: format.EncodingTag8_8SVB},
	AmperageLatest: {Name: "amperageLatest", Signed: true, PPredictor: pPrev, PEncoding: format.EncodingTag8_8SVB},
	RSSI:           {Name: "rssi", PPredictor: pPrev, PEncoding: format.EncodingTag8_8SVB},
	GyroADC0:       {Name: "gyroADC[0]", Signed: true, PPredictor: pAvg2},
	GyroADC1:       {Name: "gyroADC[1]", Signed: true, PPredictor: pAvg2},
	GyroADC2:       {Name: "gyroADC[2]", Signed: true, PPredictor: pAvg2},
	AccSmooth0:     {Name: "accSmooth[0]", Signed: true, PPredictor: pAvg2},
	AccSmooth1:     {Name: "accSmooth[1]", Signed: true, PPredictor: pAvg2},
	AccSmooth2:     {Name: "accSmooth[2]", Signed: true, PPredictor: pAvg2},
	Debug0:         {Name: "debug[0]", Signed: true, PPredictor: pAvg2},
	Debug1:         {Name: "debug[1]", Signed: true, PPredictor: pAvg2},
	Debug2:         {Name: "debug[2]", Signed: true, PPredictor: pAvg2},
	Debug3:         {Name: "debug[3]", Signed: true, PPredictor: pAvg2},
	Motor0:         {Name: "motor[0]", PPredictor: pAvg2},
	Motor1:         {Name: "motor[1]", PPredictor: pAvg2},
	Motor2:         {Name: "motor[2]", PPredictor: pAvg2},
	Motor3:         {Name: "motor[3]", PPredictor: pAvg2},
}

// Names returns the comma separated field names.
func Names() string {
	return join(func(f Field) string { return f.Name })
}

// SignedList returns the comma separated signedness flags (0 or 1).
func SignedList() string {
	return join(func(f Field) string {
		if f.Signed {
			return "1"
		}

		return "0"
	})
}

// IPredictorList returns the comma separated I-frame predictors.
func IPredictorList() string {
	return join(func(f Field) string { return strconv.Itoa(int(f.IPredictor)) })
}

// IEncodingList returns the comma separated I-frame encodings.
func IEncodingList() string {
	return join(func(f Field) string { return strconv.Itoa(int(f.IEncoding())) })
}

// PPredictorList returns the comma separated P-frame predictors.
func PPredictorList() string {
	return join(func(f Field) string { return strconv.Itoa(int(f.PPredictor)) })
}

// PEncodingList returns the comma separated P-frame encodings.
func PEncodingList() string {
	return join(func(f Field) string { return strconv.Itoa(int(f.PEncoding)) })
}

// Index returns the position of the named field, or -1.
func Index(name string) int {
	for i := range Fields {
		if Fields[i].Name == name {
			return i
		}
	}

	return -1
}

func join(fn func(Field) string) string {
	var sb strings.Builder
	for i := range Fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(fn(Fields[i]))
	}

	return sb.String()
}
