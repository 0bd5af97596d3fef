/*
Package lcmle computes the maximum likelihood estimate of a distribution
function from mixed-case interval-censored data, constrained so that the
logarithm of the distribution function is concave.

The data are provided through the icdata package, see the icdata documentation
for the accepted input forms.
*/

package lcmle
