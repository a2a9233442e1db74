// Deterministic tests comparing slotmap against the in-memory reference model.
// Uses seeded PRNG bytes for reproducible operation sequences across several
// capacities.
//
// Failures mean: the API returned wrong results, panicked with the wrong
// sentinel, or the internal tables went out of sync.

package slotmap_test

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/calvinalkan/slotmap/pkg/slotmap"
	"github.com/calvinalkan/slotmap/pkg/slotmap/internal/testutil"
)

// testProfile defines a capacity and op mix for deterministic testing.
type testProfile struct {
	name     string
	capacity int
	cfg      testutil.OpGenConfig
}

// Profiles ordered from most constrained to least constrained.
var profiles = []testProfile{
	{"Capacity1", 1, testutil.DefaultOpGenConfig()},
	{"Capacity2_FillHeavy", 2, testutil.FillHeavyOpGenConfig()},
	{"Capacity4", 4, testutil.DefaultOpGenConfig()},
	{"Capacity8_FillHeavy", 8, testutil.FillHeavyOpGenConfig()},
	{"Capacity64", 64, testutil.DefaultOpGenConfig()},
}

func Test_SlotMap_Matches_Model_When_Seeded_Random_Ops_Applied(t *testing.T) {
	t.Parallel()

	seedsPerProfile := 20
	if testing.Short() {
		seedsPerProfile = 3
	}

	bytesPerSeed := 8192

	for _, profile := range profiles {
		for seedIndex := range seedsPerProfile {
			seed := uint64(seedIndex + 1)

			t.Run(fmt.Sprintf("%s/seed=%d", profile.name, seed), func(t *testing.T) {
				t.Parallel()

				rng := rand.New(rand.NewPCG(seed, seed))
				fuzzBytes := make([]byte, bytesPerSeed)
				fillRandom(rng, fuzzBytes)

				opGen := testutil.NewOpGenerator(fuzzBytes, profile.cfg)

				testutil.RunOps(t, profile.capacity, opGen, testutil.RunConfig{
					MaxOps:        testutil.DefaultMaxOperations,
					CompareEveryN: 5,
					Check:         slotmap.CheckInvariantsForTesting[string],
				})
			})
		}
	}
}

func FuzzSlotMap_Matches_Model(f *testing.F) {
	f.Add(uint8(4), []byte{})
	f.Add(uint8(1), []byte{0, 0, 0, 0, 50, 0, 0, 0, 0, 0, 0, 0})
	f.Add(uint8(3), []byte("add add remove get contains clear add add add add"))

	f.Fuzz(func(t *testing.T, capacity uint8, data []byte) {
		capacityInt := int(capacity%32) + 1

		opGen := testutil.NewOpGenerator(data, testutil.DefaultOpGenConfig())

		testutil.RunOps(t, capacityInt, opGen, testutil.RunConfig{
			MaxOps:        testutil.DefaultMaxOperations,
			CompareEveryN: 1,
			Check:         slotmap.CheckInvariantsForTesting[string],
		})
	})
}

func fillRandom(rng *rand.Rand, buf []byte) {
	for i := range buf {
		buf[i] = byte(rng.Uint32())
	}
}
