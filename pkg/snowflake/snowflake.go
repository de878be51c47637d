package snowflake

import (
	"time"

	sf "github.com/bwmarrin/snowflake"
)

var node *sf.Node

// Init configures the snowflake epoch and machine ID. Must run before the
// first GenID call.
func Init(startTime string, machineID int64) (err error) {
	var st time.Time
	st, err = time.Parse("2006-01-02", startTime)
	if err != nil {
		return
	}
	sf.Epoch = st.UnixNano() / 1000000

	node, err = sf.NewNode(machineID)
	return
}

// GenID returns a new unique, time-ordered ID.
func GenID() int64 {
	return node.Generate().Int64()
}
