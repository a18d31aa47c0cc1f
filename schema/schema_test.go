package schema

import (
	"strings"
	"testing"

	"github.com/arloliu/bblconv/format"
	"github.com/stretchr/testify/require"
)

func TestFieldLists(t *testing.T) {
	require.Equal(t,
		"loopIteration,time,axisP[0],axisP[1],axisP[2],axisI[0],axisI[1],axisI[2],axisD[0],axisD[1],"+
			"axisF[0],axisF[1],axisF[2],rcCommand[0],rcCommand[1],rcCommand[2],rcCommand[3],"+
			"setpoint[0],setpoint[1],setpoint[2],setpoint[3],vbatLatest,amperageLatest,rssi,"+
			"gyroADC[0],gyroADC[1],gyroADC[2],accSmooth[0],accSmooth[1],accSmooth[2],"+
			"debug[0],debug[1],debug[2],debug[3],motor[0],motor[1],motor[2],motor[3]",
		Names())
	require.Equal(t, "0,0,1,1,1,1,1,1,1,1,1,1,1,1,1,1,0,1,1,1,1,0,1,0,1,1,1,1,1,1,1,1,1,1,0,0,0,0", SignedList())
	require.Equal(t, "0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0", IPredictorList())
	require.Equal(t, "1,1,0,0,0,0,0,0,0,0,0,0,0,0,0,0,1,0,0,0,0,1,0,1,0,0,0,0,0,0,0,0,0,0,1,1,1,1", IEncodingList())
	require.Equal(t, "6,2,1,1,1,1,1,1,1,1,1,1,1,1,1,1,1,1,1,1,1,1,1,1,3,3,3,3,3,3,3,3,3,3,3,3,3,3", PPredictorList())
	require.Equal(t, "9,0,0,0,0,7,7,7,0,0,0,0,0,8,8,8,8,8,8,8,8,6,6,6,0,0,0,0,0,0,0,0,0,0,0,0,0,0", PEncodingList())
}

func TestFieldCount(t *testing.T) {
	require.Equal(t, 38, FieldCount)
	require.Len(t, strings.Split(Names(), ","), FieldCount)

	for i, f := range Fields {
		require.NotEmpty(t, f.Name, "field %d has no name", i)
	}
}

func TestIEncodingFollowsSignedness(t *testing.T) {
	require.Equal(t, format.EncodingUnsignedVB, Fields[RCCommand3].IEncoding())
	require.Equal(t, format.EncodingSignedVB, Fields[RCCommand2].IEncoding())
	require.Equal(t, format.EncodingUnsignedVB, Fields[RSSI].IEncoding())
	require.Equal(t, format.EncodingSignedVB, Fields[AmperageLatest].IEncoding())
}

func TestIndex(t *testing.T) {
	require.Equal(t, LoopIteration, Index("loopIteration"))
	require.Equal(t, Motor3, Index("motor[3]"))
	require.Equal(t, -1, Index("motorHz[0]"))
}
