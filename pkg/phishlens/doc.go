// Package phishlens scores URLs for phishing risk with a pre-trained model.
//
// Quick start:
//
//	d, err := phishlens.New(phishlens.WithModelDir("models/"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer d.Close()
//
//	p, _ := d.Check(ctx, "http://paypal-account-verify.example.net/signin/index.php")
//	fmt.Println(p.IsPhishing, p.Probability)
//
// Check makes one HTTP request to the URL to time its response. Score skips
// the network entirely and classifies features you already have.
//
// A Detector is safe for concurrent use. Create once, reuse across requests.
package phishlens
