// Copyright © 2026 The rnaprobe Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package assign

// Category is the assignment outcome of a read reported by the quantifier.
type Category uint8

// The closed set of categories. Other collects reads whose tag is absent or
// not one of the four known unassigned categories, so that category counts
// always add up to the number of classified reads.
const (
	Assigned Category = iota
	UnassignedUnmapped
	UnassignedNoFeatures
	UnassignedMappingQuality
	UnassignedAmbiguous
	Other

	numCategories = int(Other) + 1
)

// Categories lists all categories in output order.
var Categories = []Category{
	Assigned,
	UnassignedUnmapped,
	UnassignedNoFeatures,
	UnassignedMappingQuality,
	UnassignedAmbiguous,
	Other,
}

var categoryNames = [numCategories]string{
	"Assigned",
	"Unassigned_Unmapped",
	"Unassigned_NoFeatures",
	"Unassigned_MappingQuality",
	"Unassigned_Ambiguous",
	"Unassigned_Other",
}

var tag2category = map[string]Category{
	"Assigned":                  Assigned,
	"Unassigned_Unmapped":       UnassignedUnmapped,
	"Unassigned_NoFeatures":     UnassignedNoFeatures,
	"Unassigned_MappingQuality": UnassignedMappingQuality,
	"Unassigned_Ambiguous":      UnassignedAmbiguous,
	"Unassigned_Ambiguity":      UnassignedAmbiguous, // spelling used by featureCounts
}

func (c Category) String() string {
	if int(c) < numCategories {
		return categoryNames[c]
	}
	return "Unknown"
}

// ParseCategory maps a per-read tag to its category. Unrecognized and empty
// tags map to Other with ok == false.
func ParseCategory(tag string) (c Category, ok bool) {
	c, ok = tag2category[tag]
	if !ok {
		return Other, false
	}
	return c, true
}
