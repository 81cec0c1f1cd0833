package simulation

import "math"

// zipfActivity gives the user at rank i (0-based) an activity weight of
// ceil(n / (i+1)^alpha), so a few users do most of the work.
func zipfActivity(n int, alpha float64) []int {
	distribution := make([]int, n)
	for i := range n {
		rank := float64(i + 1)
		distribution[i] = int(math.Ceil(float64(n) / math.Pow(rank, alpha)))
	}
	return distribution
}

// postsFor scales a user's activity weight into a post count in
// [1, maxPosts].
func postsFor(activity, users, maxPosts int) int {
	n := 1 + int(float64(activity)/float64(users)*float64(maxPosts-1))
	return min(n, maxPosts)
}
