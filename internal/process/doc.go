// Package process starts child processes in their own process group and
// kills whole process trees. Office applications spawn helpers that outlive
// a plain Kill of the direct child.
package process
